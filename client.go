package sudoemail

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sudoplatform/sudo-email-go/keystore"
)

// Client ties the key lifecycle, the sealing engine and the unsealing
// pipeline together around one KeyStore.
type Client struct {
	ks       keystore.KeyStore
	ownsKS   bool
	keys     *KeyManager
	sealer   *Sealer
	pipeline *Pipeline
	log      *logrus.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates a client. Without WithKeyStore, keys are held in memory and
// lost on Close.
func New(opts ...Option) (*Client, error) {
	cfg := newConfig(opts)

	c := &Client{
		ks:  cfg.keyStore,
		log: cfg.logger,
	}
	if c.ks == nil {
		c.ks = keystore.NewMemory(keystore.WithLogger(cfg.logger))
		c.ownsKS = true
	}

	c.keys = newKeyManager(c.ks, cfg)
	c.sealer = newSealer(c.ks, cfg)
	c.pipeline = newPipeline(c.keys, c.sealer, cfg)
	return c, nil
}

// Keys returns the client's KeyManager.
func (c *Client) Keys() *KeyManager { return c.keys }

// Sealer returns the client's Sealer.
func (c *Client) Sealer() *Sealer { return c.sealer }

// Pipeline returns the client's unsealing Pipeline.
func (c *Client) Pipeline() *Pipeline { return c.pipeline }

func (c *Client) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// GenerateDeviceKey creates a device key pair for registration with the
// service.
func (c *Client) GenerateDeviceKey(ctx context.Context) (*DeviceKey, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.keys.GenerateKeyPair(ctx)
}

// SealAlias seals an address alias with the current symmetric key.
func (c *Client) SealAlias(ctx context.Context, alias string) (*SealedEnvelope, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	keyID, err := c.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		return nil, err
	}
	return c.sealer.SealString(ctx, alias, keyID, KeyTypeSymmetricKey)
}

// NewEmailAddress builds an EmailAddress ready to send to the service, with
// alias sealed when non-empty.
func (c *Client) NewEmailAddress(ctx context.Context, owner, address, alias string) (*EmailAddress, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	addr := &EmailAddress{
		Owner:        owner,
		EmailAddress: NormalizeAddress(address),
		CreatedAt:    time.Now().UTC(),
		Status:       Completed(),
	}
	if alias != "" {
		env, err := c.SealAlias(ctx, alias)
		if err != nil {
			return nil, fmt.Errorf("seal alias: %w", err)
		}
		addr.SealedAlias = env
		addr.Alias = alias
	}
	return addr, nil
}

// UnsealEmailAddresses unseals the aliases of addrs in place.
func (c *Client) UnsealEmailAddresses(ctx context.Context, addrs []*EmailAddress) ListOutput[*EmailAddress] {
	if err := c.checkOpen(); err != nil {
		return failAll(addrs, err)
	}
	return UnsealBatch(ctx, c.pipeline, addrs)
}

// SealEmailHeader validates header and seals it for keyID.
func (c *Client) SealEmailHeader(ctx context.Context, header *EmailHeader, keyID string, keyType KeyType) (*SealedEnvelope, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}
	return c.sealer.SealJSON(ctx, header, keyID, keyType)
}

// UnsealEmailMessages unseals the headers of msgs in place.
func (c *Client) UnsealEmailMessages(ctx context.Context, msgs []*EmailMessage) ListOutput[*EmailMessage] {
	if err := c.checkOpen(); err != nil {
		return failAll(msgs, err)
	}
	return UnsealBatch(ctx, c.pipeline, msgs)
}

// BlockAddresses builds blocked address records for owner. Each record
// holds an owner-scoped hash and the normalized address sealed with the
// current symmetric key.
func (c *Client) BlockAddresses(ctx context.Context, owner string, addresses []string) ([]*BlockedAddress, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	keyID, err := c.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		return nil, err
	}

	blocked := make([]*BlockedAddress, 0, len(addresses))
	for _, address := range addresses {
		normalized := NormalizeAddress(address)
		env, err := c.sealer.SealString(ctx, normalized, keyID, KeyTypeSymmetricKey)
		if err != nil {
			return nil, fmt.Errorf("seal blocked address: %w", err)
		}
		blocked = append(blocked, &BlockedAddress{
			Owner:              owner,
			HashedBlockedValue: HashOwnedAddress(owner, normalized),
			SealedValue:        env,
			Address:            normalized,
			Status:             Completed(),
		})
	}
	return blocked, nil
}

// UnsealBlockedAddresses unseals the addresses of blocked in place.
func (c *Client) UnsealBlockedAddresses(ctx context.Context, blocked []*BlockedAddress) ListOutput[*BlockedAddress] {
	if err := c.checkOpen(); err != nil {
		return failAll(blocked, err)
	}
	return UnsealBatch(ctx, c.pipeline, blocked)
}

// Close closes the client. A KeyStore created by New is closed and its keys
// discarded; a KeyStore passed with WithKeyStore is left open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.ownsKS {
		if closer, ok := c.ks.(io.Closer); ok {
			return closer.Close()
		}
	}
	return nil
}

func failAll[T Unsealable](items []T, err error) ListOutput[T] {
	out := ListOutput[T]{Status: ListStatusSuccess}
	for _, item := range items {
		item.SetStatus(Failed(err))
		out.Failed = append(out.Failed, FailedItem[T]{Item: item, Cause: err})
	}
	if len(out.Failed) > 0 {
		out.Status = ListStatusPartial
	}
	return out
}
