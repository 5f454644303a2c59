// Package badgerstore persists key store values in an embedded Badger
// database.
//
// Values are wrapped in a CBOR record and stored under "<namespace>/<name>".
// When Config.EncryptionSecret is set, Badger's at-rest encryption is enabled
// with a key derived from the secret by HKDF.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/sudoplatform/sudo-email-go/internal/codec"
	"github.com/sudoplatform/sudo-email-go/internal/crypto"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

const (
	recordVersion = 1

	// indexCacheSize is required by Badger when encryption is enabled.
	indexCacheSize = 16 << 20
)

type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps the database in memory only.
	InMemory bool
	// EncryptionSecret, if non-empty, enables at-rest encryption.
	EncryptionSecret []byte
	Logger           *logrus.Logger
}

type record struct {
	Version   int    `cbor:"1,keyasint"`
	Value     []byte `cbor:"2,keyasint"`
	UpdatedAt int64  `cbor:"3,keyasint"`
}

// Backend is a keystore.Backend on top of Badger.
type Backend struct {
	db  *badger.DB
	log *logrus.Logger
}

// Open opens or creates the database described by config.
func Open(config Config) (*Backend, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
		config.Logger.SetLevel(logrus.WarnLevel)
	}
	if !config.InMemory && config.Path == "" {
		return nil, errors.New("badgerstore: path is required unless InMemory is set")
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(config.Path)
	}
	opts.Logger = nil

	if len(config.EncryptionSecret) > 0 {
		key, err := crypto.DeriveStorageKey(config.EncryptionSecret, "badger")
		if err != nil {
			return nil, fmt.Errorf("badgerstore: derive encryption key: %w", err)
		}
		opts = opts.WithEncryptionKey(key).WithIndexCacheSize(indexCacheSize)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}

	config.Logger.WithFields(logrus.Fields{
		"path":      config.Path,
		"in_memory": config.InMemory,
		"encrypted": len(config.EncryptionSecret) > 0,
	}).Debug("opened badger key store")

	return &Backend{db: db, log: config.Logger}, nil
}

func dbKey(ns keystore.Namespace, name string) []byte {
	return []byte(string(ns) + "/" + name)
}

func (b *Backend) Put(ctx context.Context, ns keystore.Namespace, name string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := codec.Marshal(record{
		Version:   recordVersion,
		Value:     value,
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("badgerstore: encode record: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dbKey(ns, name), data)
	})
}

func (b *Backend) Get(ctx context.Context, ns keystore.Namespace, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(ns, name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, keystore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badgerstore: read: %w", err)
	}

	var rec record
	if err := codec.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("badgerstore: decode record %s/%s: %w", ns, name, err)
	}
	clear(data)
	if rec.Value == nil {
		rec.Value = []byte{}
	}
	return rec.Value, nil
}

func (b *Backend) Delete(ctx context.Context, ns keystore.Namespace, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(dbKey(ns, name))
	})
}

func (b *Backend) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var keys [][]byte
		for _, ns := range keystore.Namespaces {
			prefix := []byte(string(ns) + "/")
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
			}
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badgerstore: clear: %w", err)
	}

	b.log.Debug("cleared badger key store")
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

var _ keystore.Backend = (*Backend)(nil)
