package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when the AES key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidIVSize is returned when the CBC IV size is invalid.
	ErrInvalidIVSize = errors.New("invalid IV size")

	// ErrInvalidCiphertextSize is returned when a ciphertext is empty or
	// not a multiple of the block size.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrInvalidPadding is returned when PKCS#7 padding does not verify.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrDecryptionFailed is returned when decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidPublicKey is returned when public key bytes cannot be parsed.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidPrivateKey is returned when private key bytes cannot be parsed.
	ErrInvalidPrivateKey = errors.New("invalid private key")
)
