package sudoemail

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

// CurrentSymmetricKeyPointer is the KeyStore password holding the id of the
// current symmetric key.
const CurrentSymmetricKeyPointer = "eml-current-symmetric-key-id"

// KeyManager owns the device key lifecycle: key pair generation and the
// current symmetric key.
type KeyManager struct {
	ks  keystore.KeyStore
	log *logrus.Logger

	// mu serializes read-or-create of the current symmetric key.
	mu sync.Mutex

	newID func() string
}

// NewKeyManager creates a KeyManager over ks. Only WithLogger applies.
func NewKeyManager(ks keystore.KeyStore, opts ...Option) *KeyManager {
	return newKeyManager(ks, newConfig(opts))
}

func newKeyManager(ks keystore.KeyStore, cfg *clientConfig) *KeyManager {
	return &KeyManager{
		ks:    ks,
		log:   cfg.logger,
		newID: uuid.NewString,
	}
}

// GenerateKeyPair creates a new device key pair and returns its public half.
func (m *KeyManager) GenerateKeyPair(ctx context.Context) (*DeviceKey, error) {
	id := m.newID()
	if err := m.ks.GenerateKeyPair(ctx, id); err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}

	pub, err := m.ks.GetPublicKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	if pub == nil {
		return nil, &InternalError{Message: "public key not found after key pair generation"}
	}

	m.log.WithField("key_id", id).Info("generated key pair")
	return &DeviceKey{
		ID:        id,
		Algorithm: crypto.AlgorithmRSA,
		Data:      pub.KeyData,
		Format:    pub.Format,
	}, nil
}

// EnsureCurrentSymmetricKey returns the id of the current symmetric key,
// creating one if the pointer is unset or references a missing key.
func (m *KeyManager) EnsureCurrentSymmetricKey(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok, err := m.currentSymmetricKeyID(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}
	return m.createSymmetricKey(ctx)
}

// GetCurrentSymmetricKeyID returns the current symmetric key id without
// creating one. ok is false when no usable key is set.
func (m *KeyManager) GetCurrentSymmetricKeyID(ctx context.Context) (id string, ok bool, err error) {
	id, ok, err = m.currentSymmetricKeyID(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	return id, true, nil
}

// RotateSymmetricKey installs a new current symmetric key. The previous key
// is kept so envelopes sealed with it remain unsealable.
func (m *KeyManager) RotateSymmetricKey(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous, _, err := m.currentSymmetricKeyID(ctx)
	if err != nil {
		return "", err
	}

	id, err := m.createSymmetricKey(ctx)
	if err != nil {
		return "", err
	}

	m.log.WithFields(logrus.Fields{
		"key_id":          id,
		"previous_key_id": previous,
	}).Info("rotated symmetric key")
	return id, nil
}

// KeyExists reports whether the key of the given type exists.
func (m *KeyManager) KeyExists(ctx context.Context, id string, keyType KeyType) (bool, error) {
	var (
		exists bool
		err    error
	)
	switch keyType {
	case KeyTypeKeyPair:
		exists, err = m.ks.DoesPrivateKeyExist(ctx, id)
	case KeyTypeSymmetricKey:
		exists, err = m.ks.DoesSymmetricKeyExist(ctx, id)
	default:
		return false, fmt.Errorf("unknown key type %q", keyType)
	}
	if err != nil {
		return false, fmt.Errorf("check %s %s: %w", keyType, id, err)
	}
	return exists, nil
}

// RemoveKey deletes the key of the given type. Removing an absent key is
// not an error.
func (m *KeyManager) RemoveKey(ctx context.Context, id string, keyType KeyType) error {
	var err error
	switch keyType {
	case KeyTypeKeyPair:
		err = m.ks.DeleteKeyPair(ctx, id)
	case KeyTypeSymmetricKey:
		err = m.ks.DeleteSymmetricKey(ctx, id)
	default:
		return fmt.Errorf("unknown key type %q", keyType)
	}
	if err != nil {
		return fmt.Errorf("remove %s %s: %w", keyType, id, err)
	}
	return nil
}

// Reset removes every key and password from the KeyStore.
func (m *KeyManager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ks.RemoveAllKeys(ctx); err != nil {
		return fmt.Errorf("remove all keys: %w", err)
	}
	m.log.Info("reset key store")
	return nil
}

func (m *KeyManager) currentSymmetricKeyID(ctx context.Context) (string, bool, error) {
	raw, err := m.ks.GetPassword(ctx, CurrentSymmetricKeyPointer)
	if err != nil {
		return "", false, fmt.Errorf("read current symmetric key pointer: %w", err)
	}
	if len(raw) == 0 {
		return "", false, nil
	}

	id := string(raw)
	exists, err := m.ks.DoesSymmetricKeyExist(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("check symmetric key %s: %w", id, err)
	}
	return id, exists, nil
}

// createSymmetricKey must be called with mu held. The pointer is written
// last so it never references a key that does not exist.
func (m *KeyManager) createSymmetricKey(ctx context.Context) (string, error) {
	id := m.newID()
	if err := m.ks.GenerateSymmetricKey(ctx, id); err != nil {
		return "", fmt.Errorf("generate symmetric key: %w", err)
	}
	if err := m.ks.DeletePassword(ctx, CurrentSymmetricKeyPointer); err != nil {
		return "", fmt.Errorf("delete current symmetric key pointer: %w", err)
	}
	if err := m.ks.AddPassword(ctx, []byte(id), CurrentSymmetricKeyPointer); err != nil {
		return "", fmt.Errorf("store current symmetric key pointer: %w", err)
	}

	m.log.WithField("key_id", id).Info("created symmetric key")
	return id, nil
}
