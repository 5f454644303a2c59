package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"fmt"
	"io"
)

// randReader is the random source used for key generation.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func reader() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// Keypair represents an RSA key pair in DER form.
type Keypair struct {
	// PublicKey is the PKCS#1 DER encoded public key.
	PublicKey []byte
	// PrivateKey is the PKCS#1 DER encoded private key.
	PrivateKey []byte
}

// GenerateKeypair creates a new RSA key pair of RSAKeySize bits.
func GenerateKeypair() (*Keypair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, RSAKeySize)
	if err != nil {
		return nil, fmt.Errorf("generate RSA key: %w", err)
	}

	return &Keypair{
		PublicKey:  x509.MarshalPKCS1PublicKey(&priv.PublicKey),
		PrivateKey: x509.MarshalPKCS1PrivateKey(priv),
	}, nil
}

// PublicKeyFromPrivate extracts the PKCS#1 public key from a PKCS#1 private key.
func PublicKeyFromPrivate(privateKey []byte) ([]byte, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return x509.MarshalPKCS1PublicKey(&priv.PublicKey), nil
}

// PublicKeyToSPKI converts a PKCS#1 public key to SubjectPublicKeyInfo DER.
func PublicKeyToSPKI(publicKey []byte) ([]byte, error) {
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	spki, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return spki, nil
}

// EncryptOAEP encrypts data for a PKCS#1 or SPKI encoded public key using
// RSA-OAEP with SHA-1.
func EncryptOAEP(publicKey, data []byte) ([]byte, error) {
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	return rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, data, nil)
}

// DecryptOAEP decrypts RSA-OAEP (SHA-1) ciphertext with a PKCS#1 private key.
func DecryptOAEP(privateKey, ciphertext []byte) ([]byte, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) != priv.Size() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidCiphertextSize, len(ciphertext), priv.Size())
	}

	plaintext, err := rsa.DecryptOAEP(sha1.New(), nil, priv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func parsePublicKey(der []byte) (*rsa.PublicKey, error) {
	if pub, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return pub, nil
	}

	// Fall back to SubjectPublicKeyInfo
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidPublicKey)
	}
	return pub, nil
}

func parsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	priv, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	return priv, nil
}
