package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
)

// Software implements KeyStore in-process. Key material is held by a Backend
// and the cryptographic operations run in this process.
type Software struct {
	backend         Backend
	publicKeyFormat PublicKeyFormat
	log             *logrus.Logger
}

// SoftwareOption configures a Software key store.
type SoftwareOption func(*Software)

// WithPublicKeyFormat selects the encoding returned by GetPublicKey.
// Default: FormatRSAPublicKey.
func WithPublicKeyFormat(format PublicKeyFormat) SoftwareOption {
	return func(s *Software) {
		s.publicKeyFormat = format
	}
}

// WithLogger sets the logger used for key store events.
func WithLogger(logger *logrus.Logger) SoftwareOption {
	return func(s *Software) {
		s.log = logger
	}
}

// NewSoftware creates a Software key store on top of backend.
func NewSoftware(backend Backend, opts ...SoftwareOption) *Software {
	s := &Software{
		backend:         backend,
		publicKeyFormat: FormatRSAPublicKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetLevel(logrus.WarnLevel)
	}
	return s
}

// NewMemory creates a Software key store backed by process memory.
func NewMemory(opts ...SoftwareOption) *Software {
	return NewSoftware(NewMemoryBackend(), opts...)
}

// Close closes the backend.
func (s *Software) Close() error {
	return s.backend.Close()
}

// get returns nil, nil for absent values.
func (s *Software) get(ctx context.Context, ns Namespace, name string) ([]byte, error) {
	value, err := s.backend.Get(ctx, ns, name)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s %q: %w", ns, name, err)
	}
	return value, nil
}

func (s *Software) exists(ctx context.Context, ns Namespace, name string) (bool, error) {
	value, err := s.get(ctx, ns, name)
	if err != nil {
		return false, err
	}
	clear(value)
	return value != nil, nil
}

func (s *Software) GenerateKeyPair(ctx context.Context, name string) error {
	kp, err := crypto.GenerateKeypair()
	if err != nil {
		return err
	}
	defer clear(kp.PrivateKey)

	if err := s.backend.Put(ctx, NamespacePrivateKey, name, kp.PrivateKey); err != nil {
		return fmt.Errorf("store private key: %w", err)
	}
	if err := s.backend.Put(ctx, NamespacePublicKey, name, kp.PublicKey); err != nil {
		return fmt.Errorf("store public key: %w", err)
	}

	s.log.WithField("name", name).Debug("generated key pair")
	return nil
}

func (s *Software) GetPublicKey(ctx context.Context, name string) (*PublicKey, error) {
	data, err := s.get(ctx, NamespacePublicKey, name)
	if err != nil || data == nil {
		return nil, err
	}

	if s.publicKeyFormat == FormatSPKI {
		spki, err := crypto.PublicKeyToSPKI(data)
		if err != nil {
			return nil, err
		}
		return &PublicKey{KeyData: spki, Format: FormatSPKI}, nil
	}
	return &PublicKey{KeyData: data, Format: FormatRSAPublicKey}, nil
}

func (s *Software) GetPrivateKey(ctx context.Context, name string) ([]byte, error) {
	return s.get(ctx, NamespacePrivateKey, name)
}

func (s *Software) DoesPrivateKeyExist(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, NamespacePrivateKey, name)
}

func (s *Software) DeleteKeyPair(ctx context.Context, name string) error {
	if err := s.backend.Delete(ctx, NamespacePrivateKey, name); err != nil {
		return fmt.Errorf("delete private key: %w", err)
	}
	if err := s.backend.Delete(ctx, NamespacePublicKey, name); err != nil {
		return fmt.Errorf("delete public key: %w", err)
	}
	return nil
}

func (s *Software) GenerateSymmetricKey(ctx context.Context, name string) error {
	key, err := crypto.GenerateAESKey()
	if err != nil {
		return err
	}
	defer clear(key)

	if err := s.backend.Put(ctx, NamespaceSymmetricKey, name, key); err != nil {
		return fmt.Errorf("store symmetric key: %w", err)
	}
	return nil
}

func (s *Software) AddSymmetricKey(ctx context.Context, key []byte, name string) error {
	if len(key) != crypto.AESKeySize {
		return fmt.Errorf("%w: symmetric key is %d bytes, want %d", ErrInvalidKey, len(key), crypto.AESKeySize)
	}
	if err := s.backend.Put(ctx, NamespaceSymmetricKey, name, key); err != nil {
		return fmt.Errorf("store symmetric key: %w", err)
	}
	return nil
}

func (s *Software) GetSymmetricKey(ctx context.Context, name string) ([]byte, error) {
	return s.get(ctx, NamespaceSymmetricKey, name)
}

func (s *Software) DoesSymmetricKeyExist(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, NamespaceSymmetricKey, name)
}

func (s *Software) DeleteSymmetricKey(ctx context.Context, name string) error {
	if err := s.backend.Delete(ctx, NamespaceSymmetricKey, name); err != nil {
		return fmt.Errorf("delete symmetric key: %w", err)
	}
	return nil
}

func (s *Software) AddPassword(ctx context.Context, password []byte, name string) error {
	if err := s.backend.Put(ctx, NamespacePassword, name, password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

func (s *Software) GetPassword(ctx context.Context, name string) ([]byte, error) {
	return s.get(ctx, NamespacePassword, name)
}

func (s *Software) DeletePassword(ctx context.Context, name string) error {
	if err := s.backend.Delete(ctx, NamespacePassword, name); err != nil {
		return fmt.Errorf("delete password: %w", err)
	}
	return nil
}

func (s *Software) EncryptWithPublicKey(ctx context.Context, name string, data []byte) ([]byte, error) {
	publicKey, err := s.get(ctx, NamespacePublicKey, name)
	if err != nil {
		return nil, err
	}
	if publicKey == nil {
		return nil, fmt.Errorf("%w: public key %q", ErrKeyNotFound, name)
	}
	return crypto.EncryptOAEP(publicKey, data)
}

func (s *Software) DecryptWithPrivateKey(ctx context.Context, name string, data []byte) ([]byte, error) {
	privateKey, err := s.get(ctx, NamespacePrivateKey, name)
	if err != nil {
		return nil, err
	}
	if privateKey == nil {
		return nil, fmt.Errorf("%w: private key %q", ErrKeyNotFound, name)
	}
	defer clear(privateKey)

	return crypto.DecryptOAEP(privateKey, data)
}

func (s *Software) EncryptWithSymmetricKey(ctx context.Context, key, data []byte, opts *SymmetricOptions) ([]byte, error) {
	iv, err := symmetricIV(opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return crypto.EncryptAESCBC(key, data, iv)
}

func (s *Software) DecryptWithSymmetricKey(ctx context.Context, key, data []byte, opts *SymmetricOptions) ([]byte, error) {
	iv, err := symmetricIV(opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return crypto.DecryptAESCBC(key, data, iv)
}

func (s *Software) EncryptWithSymmetricKeyName(ctx context.Context, name string, data []byte, opts *SymmetricOptions) ([]byte, error) {
	key, err := s.namedSymmetricKey(ctx, name)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	return s.EncryptWithSymmetricKey(ctx, key, data, opts)
}

func (s *Software) DecryptWithSymmetricKeyName(ctx context.Context, name string, data []byte, opts *SymmetricOptions) ([]byte, error) {
	key, err := s.namedSymmetricKey(ctx, name)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	return s.DecryptWithSymmetricKey(ctx, key, data, opts)
}

func (s *Software) RemoveAllKeys(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		return fmt.Errorf("clear key store: %w", err)
	}
	s.log.Info("removed all keys")
	return nil
}

func (s *Software) namedSymmetricKey(ctx context.Context, name string) ([]byte, error) {
	key, err := s.get(ctx, NamespaceSymmetricKey, name)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, fmt.Errorf("%w: symmetric key %q", ErrKeyNotFound, name)
	}
	return key, nil
}

func symmetricIV(opts *SymmetricOptions) ([]byte, error) {
	if opts == nil {
		return nil, nil
	}
	if opts.Algorithm != "" && opts.Algorithm != crypto.AlgorithmAESCBCPKCS7 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, opts.Algorithm)
	}
	return opts.IV, nil
}

var _ KeyStore = (*Software)(nil)
