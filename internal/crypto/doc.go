// Package crypto provides the cryptographic primitives behind the sealed
// envelope formats used by the Sudo Platform email service.
//
// # Algorithm Suite
//
// The package uses the following algorithms, fixed by the interop contract
// shared with the other Sudo Platform SDKs:
//
//   - RSA-2048 with OAEP (SHA-1): wraps one-time payload keys for a
//     recipient key pair. A wrapped key is always [RSAKeySizeBytes] long.
//
//   - AES-256-CBC with PKCS#7 padding: encrypts payloads. The IV defaults to
//     16 zero bytes because envelopes do not carry an IV; every payload sealed
//     for a key pair uses a fresh key.
//
//   - HKDF-SHA-512 (RFC 5869): derives storage encryption keys from a master
//     secret for persistent key stores.
//
// # Key Encoding
//
// Private keys are PKCS#1 DER. Public keys are PKCS#1 DER ("RSA public key"
// format) and can be converted to SubjectPublicKeyInfo with [PublicKeyToSPKI].
//
// # Base64 Encoding
//
// Sealed data crosses the wire as standard base64 with padding (RFC 4648 §4),
// see [ToBase64] and [FromBase64].
//
// CBC mode is not authenticated. Tampering is detected only through padding
// and downstream UTF-8/JSON validation, so callers must never treat a
// successful [DecryptAESCBC] as proof of integrity.
package crypto
