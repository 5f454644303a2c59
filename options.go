package sudoemail

import (
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

const (
	defaultUnsealConcurrency = 8
	tracerName               = "github.com/sudoplatform/sudo-email-go"
)

// clientConfig holds configuration shared by the client and its components.
type clientConfig struct {
	keyStore           keystore.KeyStore
	logger             *logrus.Logger
	tracerProvider     trace.TracerProvider
	unsealConcurrency  int
	symmetricAlgorithm string

	// Called for every entity that fails to unseal
	onUnsealFailure func(entity Unsealable, err error)
}

// Option configures the client.
type Option func(*clientConfig)

func newConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{
		unsealConcurrency:  defaultUnsealConcurrency,
		symmetricAlgorithm: crypto.AlgorithmAESCBCPKCS7,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logrus.New()
		cfg.logger.SetLevel(logrus.WarnLevel)
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.unsealConcurrency < 1 {
		cfg.unsealConcurrency = 1
	}
	return cfg
}

func (c *clientConfig) tracer() trace.Tracer {
	return c.tracerProvider.Tracer(tracerName)
}

// WithKeyStore sets the KeyStore holding device keys.
// Default: an in-memory keystore.Software.
func WithKeyStore(ks keystore.KeyStore) Option {
	return func(c *clientConfig) {
		c.keyStore = ks
	}
}

// WithLogger sets the logger.
// Default: a logrus logger at Warn level.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *clientConfig) {
		c.tracerProvider = tp
	}
}

// WithUnsealConcurrency sets how many entities of a batch are unsealed at
// once. Values below 1 are treated as 1.
// Default: 8
func WithUnsealConcurrency(n int) Option {
	return func(c *clientConfig) {
		c.unsealConcurrency = n
	}
}

// WithSymmetricAlgorithm sets the algorithm recorded in symmetric envelopes.
// Default: AES/CBC/PKCS7Padding, the only algorithm the bundled KeyStore
// accepts.
func WithSymmetricAlgorithm(algorithm string) Option {
	return func(c *clientConfig) {
		c.symmetricAlgorithm = algorithm
	}
}

// WithOnUnsealFailure sets a callback invoked for each entity whose
// unsealing fails. The batch result still reports the failure. fn may be
// called from several goroutines at once.
func WithOnUnsealFailure(fn func(entity Unsealable, err error)) Option {
	return func(c *clientConfig) {
		c.onUnsealFailure = fn
	}
}
