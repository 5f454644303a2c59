package crypto

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey expands secret into length bytes with HKDF-SHA-512. An empty
// salt is replaced by a zero block of hash size, per RFC 5869.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("derive key: empty secret")
	}
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}

	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha512.New, secret, salt, info), out); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return out, nil
}

// DeriveStorageKey derives an AES-256 key for encrypting a key store at
// rest. The purpose string separates keys derived from one master secret.
func DeriveStorageKey(masterSecret []byte, purpose string) ([]byte, error) {
	return DeriveKey(masterSecret, nil, []byte(HKDFContext+":"+purpose), AESKeySize)
}
