package keystore

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned when an operation needs a key that does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnsupportedAlgorithm is returned for a symmetric algorithm other
	// than AES/CBC/PKCS7Padding.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrInvalidKey is returned when supplied key material has the wrong shape.
	ErrInvalidKey = errors.New("invalid key")
)

// PublicKeyFormat identifies the encoding of public key bytes.
type PublicKeyFormat string

const (
	// FormatRSAPublicKey is PKCS#1 RSAPublicKey DER.
	FormatRSAPublicKey PublicKeyFormat = "RSAPublicKey"
	// FormatSPKI is X.509 SubjectPublicKeyInfo DER.
	FormatSPKI PublicKeyFormat = "SPKI"
)

// PublicKey is the public half of a stored key pair.
type PublicKey struct {
	KeyData []byte
	Format  PublicKeyFormat
}

// SymmetricOptions tunes a symmetric encryption or decryption.
// The zero value selects AES/CBC/PKCS7Padding with an all-zero IV.
type SymmetricOptions struct {
	// Algorithm defaults to AES/CBC/PKCS7Padding.
	Algorithm string
	// IV defaults to 16 zero bytes.
	IV []byte
}

// KeyStore is the key management capability used by the sealing core.
type KeyStore interface {
	GenerateKeyPair(ctx context.Context, name string) error
	GetPublicKey(ctx context.Context, name string) (*PublicKey, error)
	GetPrivateKey(ctx context.Context, name string) ([]byte, error)
	DoesPrivateKeyExist(ctx context.Context, name string) (bool, error)
	DeleteKeyPair(ctx context.Context, name string) error

	GenerateSymmetricKey(ctx context.Context, name string) error
	AddSymmetricKey(ctx context.Context, key []byte, name string) error
	GetSymmetricKey(ctx context.Context, name string) ([]byte, error)
	DoesSymmetricKeyExist(ctx context.Context, name string) (bool, error)
	DeleteSymmetricKey(ctx context.Context, name string) error

	AddPassword(ctx context.Context, password []byte, name string) error
	GetPassword(ctx context.Context, name string) ([]byte, error)
	DeletePassword(ctx context.Context, name string) error

	EncryptWithPublicKey(ctx context.Context, name string, data []byte) ([]byte, error)
	DecryptWithPrivateKey(ctx context.Context, name string, data []byte) ([]byte, error)

	EncryptWithSymmetricKey(ctx context.Context, key, data []byte, opts *SymmetricOptions) ([]byte, error)
	DecryptWithSymmetricKey(ctx context.Context, key, data []byte, opts *SymmetricOptions) ([]byte, error)
	EncryptWithSymmetricKeyName(ctx context.Context, name string, data []byte, opts *SymmetricOptions) ([]byte, error)
	DecryptWithSymmetricKeyName(ctx context.Context, name string, data []byte, opts *SymmetricOptions) ([]byte, error)

	// RemoveAllKeys deletes every key pair, symmetric key and password.
	RemoveAllKeys(ctx context.Context) error
}
