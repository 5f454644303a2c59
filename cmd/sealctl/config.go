package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sudoplatform/sudo-email-go/keystore"
	"github.com/sudoplatform/sudo-email-go/keystore/badgerstore"
	"github.com/sudoplatform/sudo-email-go/keystore/sqlstore"
)

// Backend names accepted by --backend.
const (
	backendMemory = "memory"
	backendBadger = "badger"
	backendSQLite = "sqlite"
)

// Config is the CLI configuration. Environment variables provide defaults
// that flags override.
type Config struct {
	Backend          string
	Path             string
	EncryptionSecret string
	LogLevel         string
	Output           string
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() *Config {
	return &Config{
		Backend:          getEnv("SEALCTL_BACKEND", backendBadger),
		Path:             getEnv("SEALCTL_PATH", "./sealctl-data"),
		EncryptionSecret: os.Getenv("SEALCTL_ENCRYPTION_SECRET"),
		LogLevel:         getEnv("SEALCTL_LOG_LEVEL", "warn"),
		Output:           getEnv("SEALCTL_OUTPUT", "text"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func (c *Config) logger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	return logger, nil
}

// openKeyStore opens the configured backend. The caller must Close the
// returned key store.
func (c *Config) openKeyStore(logger *logrus.Logger) (*keystore.Software, error) {
	var (
		backend keystore.Backend
		err     error
	)
	switch c.Backend {
	case backendMemory:
		backend = keystore.NewMemoryBackend()
	case backendBadger:
		backend, err = badgerstore.Open(badgerstore.Config{
			Path:             c.Path,
			EncryptionSecret: []byte(c.EncryptionSecret),
			Logger:           logger,
		})
	case backendSQLite:
		backend, err = sqlstore.OpenSQLite(c.Path, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, backendMemory, backendBadger, backendSQLite)
	}
	if err != nil {
		return nil, err
	}
	return keystore.NewSoftware(backend, keystore.WithLogger(logger)), nil
}
