package crypto

const (
	// RSAKeySize is the modulus size in bits of generated key pairs.
	RSAKeySize = 2048
	// RSAKeySizeBytes is the size of an RSA-OAEP ciphertext for RSAKeySize.
	RSAKeySizeBytes = RSAKeySize / 8

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESBlockSize is the AES block size, which is also the CBC IV size.
	AESBlockSize = 16
)

// Algorithm names as they appear in sealed envelopes.
const (
	// AlgorithmAESCBCPKCS7 is symmetric sealing under a named key.
	AlgorithmAESCBCPKCS7 = "AES/CBC/PKCS7Padding"
	// AlgorithmRSAOAEPAESCBC is hybrid sealing for a key pair.
	AlgorithmRSAOAEPAESCBC = "RSAEncryptionOAEPAESCBC"
	// AlgorithmRSA is the algorithm reported for generated key pairs.
	AlgorithmRSA = "RSA"
)

// HKDFContext is the info prefix used when deriving storage keys.
const HKDFContext = "sudoplatform:email:keystore:v1"
