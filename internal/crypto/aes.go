package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

// zeroIV is the IV used when the caller does not supply one.
var zeroIV = make([]byte, AESBlockSize)

// GenerateAESKey returns a fresh random AES-256 key.
func GenerateAESKey() ([]byte, error) {
	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(reader(), key); err != nil {
		return nil, fmt.Errorf("generate AES key: %w", err)
	}
	return key, nil
}

// EncryptAESCBC encrypts plaintext with AES-256-CBC and PKCS#7 padding.
// A nil iv selects the all-zero IV. The IV is not prepended to the output.
func EncryptAESCBC(key, plaintext, iv []byte) ([]byte, error) {
	block, iv, err := newCBC(key, iv)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, AESBlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// DecryptAESCBC decrypts AES-256-CBC ciphertext and strips PKCS#7 padding.
// A nil iv selects the all-zero IV.
func DecryptAESCBC(key, ciphertext, iv []byte) ([]byte, error) {
	block, iv, err := newCBC(key, iv)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%AESBlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCiphertextSize, len(ciphertext))
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, AESBlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return unpadded, nil
}

func newCBC(key, iv []byte) (cipher.Block, []byte, error) {
	if len(key) != AESKeySize {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}
	if iv == nil {
		iv = zeroIV
	}
	if len(iv) != AESBlockSize {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), AESBlockSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return block, iv, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data), len(data)+n)
	copy(padded, data)
	for i := 0; i < n; i++ {
		padded = append(padded, byte(n))
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
