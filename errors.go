package sudoemail

import (
	"errors"
	"fmt"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrKeyNotFound is returned when a referenced key does not exist in the KeyStore.
	ErrKeyNotFound = errors.New("key not found")

	// ErrDecode is returned when a sealed payload cannot be unsealed or decoded.
	ErrDecode = errors.New("decode failed")

	// ErrSyntax is returned when an unsealed payload is not valid JSON.
	ErrSyntax = errors.New("malformed JSON payload")

	// ErrInternal is returned on local inconsistencies.
	ErrInternal = errors.New("internal error")

	// ErrInvalidEnvelope is returned for envelopes missing required fields.
	ErrInvalidEnvelope = errors.New("invalid sealed envelope")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")
)

const (
	unsealFailedMessage = "Could not unseal sealed payload"
	utf8FailedMessage   = "Could not decode unsealed payload as UTF-8"
)

// SudoEmailError is implemented by all SDK errors.
type SudoEmailError interface {
	error
	SudoEmailError() // marker method
}

// KeyNotFoundError reports a key id absent from the KeyStore.
type KeyNotFoundError struct {
	KeyID   string
	KeyType KeyType
}

func (e *KeyNotFoundError) Error() string {
	if e.KeyID == "" {
		return fmt.Sprintf("%s not found", e.KeyType)
	}
	return fmt.Sprintf("%s not found: %s", e.KeyType, e.KeyID)
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// SudoEmailError implements the SudoEmailError interface.
func (e *KeyNotFoundError) SudoEmailError() {}

// DecodeError reports a payload that could not be decrypted or did not
// decode to the expected shape.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// SudoEmailError implements the SudoEmailError interface.
func (e *DecodeError) SudoEmailError() {}

// SyntaxError wraps a JSON syntax error found in an unsealed payload.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed JSON payload: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// SudoEmailError implements the SudoEmailError interface.
func (e *SyntaxError) SudoEmailError() {}

// InternalError reports a local inconsistency, such as a key pair whose
// public key cannot be read back right after generation.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Message)
}

// Is implements errors.Is for sentinel error matching.
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// SudoEmailError implements the SudoEmailError interface.
func (e *InternalError) SudoEmailError() {}

// wrapKeyStoreError converts KeyStore errors to public errors so that
// errors.Is() checks work with public sentinel errors.
func wrapKeyStoreError(err error, keyID string, keyType KeyType) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, keystore.ErrKeyNotFound) {
		return &KeyNotFoundError{KeyID: keyID, KeyType: keyType}
	}

	if errors.Is(err, crypto.ErrDecryptionFailed) ||
		errors.Is(err, crypto.ErrInvalidCiphertextSize) ||
		errors.Is(err, crypto.ErrInvalidPadding) {
		return &DecodeError{Message: unsealFailedMessage, Err: err}
	}

	if errors.Is(err, crypto.ErrInvalidPublicKey) || errors.Is(err, crypto.ErrInvalidPrivateKey) {
		return &InternalError{Message: err.Error()}
	}

	return err
}
