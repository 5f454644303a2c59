// Package sqlstore persists key store values in a SQL database through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/sudoplatform/sudo-email-go/keystore"
)

// KeyRecord is the gorm model for one stored value.
type KeyRecord struct {
	Namespace string    `gorm:"type:varchar(16);primaryKey"`
	Name      string    `gorm:"type:varchar(255);primaryKey"`
	Value     []byte    `gorm:"type:blob"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name.
func (KeyRecord) TableName() string {
	return "key_store_values"
}

// Backend is a keystore.Backend on top of gorm.
type Backend struct {
	db  *gorm.DB
	log *logrus.Logger
}

// New wraps an open gorm connection and migrates the schema.
func New(db *gorm.DB, log *logrus.Logger) (*Backend, error) {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	if err := db.AutoMigrate(&KeyRecord{}); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Backend{db: db, log: log}, nil
}

// OpenSQLite opens the SQLite database at path. Use ":memory:" for a
// process-local database.
func OpenSQLite(path string, log *logrus.Logger) (*Backend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)

	return New(db, log)
}

func (b *Backend) Put(ctx context.Context, ns keystore.Namespace, name string, value []byte) error {
	rec := &KeyRecord{
		Namespace: string(ns),
		Name:      name,
		Value:     value,
	}
	err := b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(rec).Error
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"namespace": ns,
			"name":      name,
			"error":     err,
		}).Error("failed to store key store value")
		return fmt.Errorf("sqlstore: put: %w", err)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, ns keystore.Namespace, name string) ([]byte, error) {
	var rec KeyRecord
	err := b.db.WithContext(ctx).
		Where("namespace = ? AND name = ?", string(ns), name).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, keystore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get: %w", err)
	}
	if rec.Value == nil {
		rec.Value = []byte{}
	}
	return rec.Value, nil
}

func (b *Backend) Delete(ctx context.Context, ns keystore.Namespace, name string) error {
	err := b.db.WithContext(ctx).
		Where("namespace = ? AND name = ?", string(ns), name).
		Delete(&KeyRecord{}).Error
	if err != nil {
		return fmt.Errorf("sqlstore: delete: %w", err)
	}
	return nil
}

func (b *Backend) Clear(ctx context.Context) error {
	namespaces := make([]string, 0, len(keystore.Namespaces))
	for _, ns := range keystore.Namespaces {
		namespaces = append(namespaces, string(ns))
	}

	result := b.db.WithContext(ctx).
		Where("namespace IN ?", namespaces).
		Delete(&KeyRecord{})
	if result.Error != nil {
		return fmt.Errorf("sqlstore: clear: %w", result.Error)
	}

	b.log.WithField("rows", result.RowsAffected).Debug("cleared sql key store")
	return nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ keystore.Backend = (*Backend)(nil)
