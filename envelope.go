package sudoemail

import (
	"encoding/json"
	"fmt"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

// KeyType identifies which kind of key an envelope is sealed with.
type KeyType string

const (
	// KeyTypeKeyPair is an RSA device key pair.
	KeyTypeKeyPair KeyType = "KeyPair"
	// KeyTypeSymmetricKey is an AES-256 symmetric key.
	KeyTypeSymmetricKey KeyType = "SymmetricKey"
)

// Envelope algorithm identifiers.
const (
	AlgorithmSymmetric  = crypto.AlgorithmAESCBCPKCS7
	AlgorithmAsymmetric = crypto.AlgorithmRSAOAEPAESCBC
)

// AsymmetricKeySegmentLength is the length in bytes of the RSA-wrapped
// cipher key at the front of an asymmetric envelope's data.
const AsymmetricKeySegmentLength = crypto.RSAKeySizeBytes

// PlainTextType describes how the unsealed text should be interpreted.
type PlainTextType string

const (
	PlainTextString     PlainTextType = "string"
	PlainTextJSONString PlainTextType = "json-string"
)

// SealedEnvelope is the stored and transmitted form of a sealed value.
type SealedEnvelope struct {
	Algorithm               string        `json:"algorithm"`
	KeyID                   string        `json:"keyId"`
	PlainTextType           PlainTextType `json:"plainTextType"`
	Base64EncodedSealedData string        `json:"base64EncodedSealedData"`
}

// Validate reports whether the envelope carries every required field.
func (e *SealedEnvelope) Validate() error {
	switch {
	case e == nil:
		return fmt.Errorf("%w: nil envelope", ErrInvalidEnvelope)
	case e.Algorithm == "":
		return fmt.Errorf("%w: missing algorithm", ErrInvalidEnvelope)
	case e.KeyID == "":
		return fmt.Errorf("%w: missing keyId", ErrInvalidEnvelope)
	case e.Base64EncodedSealedData == "":
		return fmt.Errorf("%w: missing base64EncodedSealedData", ErrInvalidEnvelope)
	}
	switch e.PlainTextType {
	case "", PlainTextString, PlainTextJSONString:
		return nil
	default:
		return fmt.Errorf("%w: unknown plainTextType %q", ErrInvalidEnvelope, e.PlainTextType)
	}
}

// KeyType returns the key type implied by the envelope's algorithm.
func (e *SealedEnvelope) KeyType() KeyType {
	return KeyTypeForAlgorithm(e.Algorithm)
}

// KeyTypeForAlgorithm maps an envelope algorithm to the key type that
// unseals it. Unknown algorithms map to KeyTypeSymmetricKey, which lets the
// KeyStore reject them.
func KeyTypeForAlgorithm(algorithm string) KeyType {
	if algorithm == AlgorithmAsymmetric {
		return KeyTypeKeyPair
	}
	return KeyTypeSymmetricKey
}

// ParseEnvelope decodes and validates a JSON envelope.
func ParseEnvelope(data []byte) (*SealedEnvelope, error) {
	var env SealedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// DeviceKey is the public half of a device key pair, as registered with
// the service.
type DeviceKey struct {
	ID        string
	Algorithm string
	Data      []byte
	Format    keystore.PublicKeyFormat
}
