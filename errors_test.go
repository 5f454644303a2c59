package sudoemail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrKeyNotFound", ErrKeyNotFound},
		{"ErrDecode", ErrDecode},
		{"ErrSyntax", ErrSyntax},
		{"ErrInternal", ErrInternal},
		{"ErrInvalidEnvelope", ErrInvalidEnvelope},
		{"ErrClientClosed", ErrClientClosed},
	}

	for _, s := range sentinels {
		t.Run(s.name, func(t *testing.T) {
			if s.err == nil {
				t.Error("sentinel error is nil")
			}
			if s.err.Error() == "" {
				t.Error("sentinel error has empty message")
			}
		})
	}
}

func TestTypedErrors_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "key not found",
			err:      &KeyNotFoundError{KeyID: "abc", KeyType: KeyTypeKeyPair},
			expected: "KeyPair not found: abc",
		},
		{
			name:     "key not found without id",
			err:      &KeyNotFoundError{KeyType: KeyTypeSymmetricKey},
			expected: "SymmetricKey not found",
		},
		{
			name:     "decode without cause",
			err:      &DecodeError{Message: "Could not decode unsealed payload as UTF-8"},
			expected: "Could not decode unsealed payload as UTF-8",
		},
		{
			name:     "decode with cause",
			err:      &DecodeError{Message: "Could not unseal sealed payload", Err: errors.New("bad padding")},
			expected: "Could not unseal sealed payload: bad padding",
		},
		{
			name:     "syntax",
			err:      &SyntaxError{Err: errors.New("invalid character")},
			expected: "malformed JSON payload: invalid character",
		},
		{
			name:     "internal",
			err:      &InternalError{Message: "boom"},
			expected: "internal error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestTypedErrors_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"KeyNotFoundError", &KeyNotFoundError{KeyID: "k"}, ErrKeyNotFound},
		{"DecodeError", &DecodeError{Message: "m"}, ErrDecode},
		{"SyntaxError", &SyntaxError{Err: errors.New("x")}, ErrSyntax},
		{"InternalError", &InternalError{Message: "m"}, ErrInternal},
		{"wrapped KeyNotFoundError", fmt.Errorf("outer: %w", &KeyNotFoundError{}), ErrKeyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			var sdkErr SudoEmailError
			if !errors.As(tt.err, &sdkErr) {
				t.Error("error does not implement SudoEmailError")
			}
		})
	}

	if errors.Is(&DecodeError{Message: "m"}, ErrKeyNotFound) {
		t.Error("DecodeError matches ErrKeyNotFound")
	}
}

func TestTypedErrors_Unwrap(t *testing.T) {
	cause := errors.New("root cause")

	if !errors.Is(&DecodeError{Message: "m", Err: cause}, cause) {
		t.Error("DecodeError does not unwrap to its cause")
	}
	if !errors.Is(&SyntaxError{Err: cause}, cause) {
		t.Error("SyntaxError does not unwrap to its cause")
	}
}

func TestWrapKeyStoreError(t *testing.T) {
	if wrapKeyStoreError(nil, "k", KeyTypeKeyPair) != nil {
		t.Error("wrapKeyStoreError(nil) != nil")
	}

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"key store not found", fmt.Errorf("x: %w", keystore.ErrKeyNotFound), ErrKeyNotFound},
		{"decryption failed", crypto.ErrDecryptionFailed, ErrDecode},
		{"bad ciphertext size", crypto.ErrInvalidCiphertextSize, ErrDecode},
		{"bad padding", crypto.ErrInvalidPadding, ErrDecode},
		{"bad public key", crypto.ErrInvalidPublicKey, ErrInternal},
		{"bad private key", crypto.ErrInvalidPrivateKey, ErrInternal},
		{"other error passes through", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapKeyStoreError(tt.err, "k", KeyTypeSymmetricKey)
			if !errors.Is(got, tt.sentinel) {
				t.Errorf("wrapKeyStoreError() = %v, want match for %v", got, tt.sentinel)
			}
		})
	}

	var notFound *KeyNotFoundError
	if err := wrapKeyStoreError(keystore.ErrKeyNotFound, "k-1", KeyTypeKeyPair); !errors.As(err, &notFound) || notFound.KeyID != "k-1" {
		t.Errorf("wrapKeyStoreError() = %v, want KeyNotFoundError for k-1", err)
	}
}

func TestClassifyDecodeError(t *testing.T) {
	var syntaxErr *json.SyntaxError
	rawSyntax := json.Unmarshal([]byte(`{]`), &struct{}{})
	if !errors.As(rawSyntax, &syntaxErr) {
		t.Fatalf("json.Unmarshal error = %T, want *json.SyntaxError", rawSyntax)
	}

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"json syntax", rawSyntax, ErrSyntax},
		{"json type", json.Unmarshal([]byte(`{"a":1}`), &struct{ A string }{}), ErrDecode},
		{"sdk error kept", &KeyNotFoundError{}, ErrKeyNotFound},
		{"other", errors.New("x"), ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDecodeError(tt.err); !errors.Is(got, tt.sentinel) {
				t.Errorf("classifyDecodeError() = %v, want match for %v", got, tt.sentinel)
			}
		})
	}
}
