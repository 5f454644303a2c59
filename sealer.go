package sudoemail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
	"github.com/sudoplatform/sudo-email-go/internal/secret"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

// Sealer seals and unseals values with keys held in a KeyStore.
type Sealer struct {
	ks                 keystore.KeyStore
	log                *logrus.Logger
	tracer             trace.Tracer
	symmetricAlgorithm string

	newID func() string
}

// NewSealer creates a Sealer over ks.
func NewSealer(ks keystore.KeyStore, opts ...Option) *Sealer {
	cfg := newConfig(opts)
	return newSealer(ks, cfg)
}

func newSealer(ks keystore.KeyStore, cfg *clientConfig) *Sealer {
	return &Sealer{
		ks:                 ks,
		log:                cfg.logger,
		tracer:             cfg.tracer(),
		symmetricAlgorithm: cfg.symmetricAlgorithm,
		newID:              uuid.NewString,
	}
}

// Seal encrypts payload with the key identified by keyID and keyType.
func (s *Sealer) Seal(ctx context.Context, payload []byte, keyID string, keyType KeyType, plainTextType PlainTextType) (env *SealedEnvelope, err error) {
	ctx, span := s.tracer.Start(ctx, "sudoemail.Seal", trace.WithAttributes(
		attribute.String("key.type", string(keyType)),
		attribute.String("key.id", keyID),
	))
	defer func() { endSpan(span, err) }()

	var (
		algorithm string
		sealed    []byte
	)
	switch keyType {
	case KeyTypeSymmetricKey:
		algorithm = s.symmetricAlgorithm
		sealed, err = s.ks.EncryptWithSymmetricKeyName(ctx, keyID, payload, &keystore.SymmetricOptions{Algorithm: algorithm})
		if err != nil {
			return nil, wrapKeyStoreError(err, keyID, keyType)
		}
	case KeyTypeKeyPair:
		algorithm = AlgorithmAsymmetric
		sealed, err = s.sealAsymmetric(ctx, payload, keyID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown key type %q", keyType)
	}

	return &SealedEnvelope{
		Algorithm:               algorithm,
		KeyID:                   keyID,
		PlainTextType:           plainTextType,
		Base64EncodedSealedData: crypto.ToBase64(sealed),
	}, nil
}

// SealString seals a string value.
func (s *Sealer) SealString(ctx context.Context, value, keyID string, keyType KeyType) (*SealedEnvelope, error) {
	return s.Seal(ctx, []byte(value), keyID, keyType, PlainTextString)
}

// SealJSON seals the JSON encoding of v.
func (s *Sealer) SealJSON(ctx context.Context, v any, keyID string, keyType KeyType) (*SealedEnvelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return s.Seal(ctx, data, keyID, keyType, PlainTextJSONString)
}

// sealAsymmetric encrypts payload under a one-time cipher key and prefixes
// the cipher key wrapped with the recipient's public key.
func (s *Sealer) sealAsymmetric(ctx context.Context, payload []byte, keyID string) ([]byte, error) {
	cipherKeyName := s.newID()
	if err := s.ks.GenerateSymmetricKey(ctx, cipherKeyName); err != nil {
		return nil, fmt.Errorf("generate cipher key: %w", err)
	}
	defer func() {
		if err := s.ks.DeleteSymmetricKey(context.WithoutCancel(ctx), cipherKeyName); err != nil {
			s.log.WithError(err).Warn("failed to delete one-time cipher key")
		}
	}()

	raw, err := s.ks.GetSymmetricKey(ctx, cipherKeyName)
	if err != nil {
		return nil, fmt.Errorf("read cipher key: %w", err)
	}
	if len(raw) == 0 {
		return nil, &InternalError{Message: "cipher key not found after generation"}
	}
	cipherKey, err := secret.NewFromBytes(raw)
	if err != nil {
		return nil, err
	}
	defer cipherKey.Close()

	ciphertext, err := s.ks.EncryptWithSymmetricKey(ctx, cipherKey.Bytes(), payload, &keystore.SymmetricOptions{Algorithm: AlgorithmSymmetric})
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}

	wrappedKey, err := s.ks.EncryptWithPublicKey(ctx, keyID, cipherKey.Bytes())
	if err != nil {
		return nil, wrapKeyStoreError(err, keyID, KeyTypeKeyPair)
	}
	if len(wrappedKey) != AsymmetricKeySegmentLength {
		return nil, &InternalError{Message: fmt.Sprintf("wrapped cipher key is %d bytes, want %d", len(wrappedKey), AsymmetricKeySegmentLength)}
	}

	return append(wrappedKey, ciphertext...), nil
}

// Unseal decrypts env with the key of the given type and returns the
// plaintext.
func (s *Sealer) Unseal(ctx context.Context, env *SealedEnvelope, keyType KeyType) (plaintext string, err error) {
	if err := env.Validate(); err != nil {
		return "", err
	}

	ctx, span := s.tracer.Start(ctx, "sudoemail.Unseal", trace.WithAttributes(
		attribute.String("key.type", string(keyType)),
		attribute.String("key.id", env.KeyID),
	))
	defer func() { endSpan(span, err) }()

	data, err := crypto.FromBase64(env.Base64EncodedSealedData)
	if err != nil {
		return "", &DecodeError{Message: unsealFailedMessage, Err: err}
	}

	var unsealed []byte
	switch keyType {
	case KeyTypeSymmetricKey:
		unsealed, err = s.ks.DecryptWithSymmetricKeyName(ctx, env.KeyID, data, &keystore.SymmetricOptions{Algorithm: env.Algorithm})
		if err != nil {
			return "", &DecodeError{Message: unsealFailedMessage, Err: err}
		}
	case KeyTypeKeyPair:
		unsealed, err = s.unsealAsymmetric(ctx, data, env.KeyID)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown key type %q", keyType)
	}

	if !utf8.Valid(unsealed) {
		return "", &DecodeError{Message: utf8FailedMessage}
	}
	return string(unsealed), nil
}

func (s *Sealer) unsealAsymmetric(ctx context.Context, data []byte, keyID string) ([]byte, error) {
	if len(data) <= AsymmetricKeySegmentLength {
		return nil, &DecodeError{
			Message: unsealFailedMessage,
			Err:     fmt.Errorf("sealed data is %d bytes, want more than %d", len(data), AsymmetricKeySegmentLength),
		}
	}
	encryptedCipherKey := data[:AsymmetricKeySegmentLength]
	ciphertext := data[AsymmetricKeySegmentLength:]

	exists, err := s.ks.DoesPrivateKeyExist(ctx, keyID)
	if err != nil {
		return nil, fmt.Errorf("check private key %s: %w", keyID, err)
	}
	if !exists {
		return nil, &KeyNotFoundError{KeyID: keyID, KeyType: KeyTypeKeyPair}
	}

	raw, err := s.ks.DecryptWithPrivateKey(ctx, keyID, encryptedCipherKey)
	if err != nil {
		var notFound *KeyNotFoundError
		if wrapped := wrapKeyStoreError(err, keyID, KeyTypeKeyPair); errors.As(wrapped, &notFound) {
			return nil, wrapped
		}
		return nil, &DecodeError{Message: unsealFailedMessage, Err: err}
	}
	if len(raw) == 0 {
		return nil, &DecodeError{Message: unsealFailedMessage, Err: errors.New("empty cipher key")}
	}

	cipherKey, err := secret.NewFromBytes(raw)
	if err != nil {
		return nil, err
	}
	defer cipherKey.Close()

	plaintext, err := s.ks.DecryptWithSymmetricKey(ctx, cipherKey.Bytes(), ciphertext, &keystore.SymmetricOptions{Algorithm: AlgorithmSymmetric})
	if err != nil {
		return nil, &DecodeError{Message: unsealFailedMessage, Err: err}
	}
	return plaintext, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
