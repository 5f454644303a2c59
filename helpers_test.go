package sudoemail

import (
	"context"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/sudoplatform/sudo-email-go/keystore"
)

// testSymmetricKeyHex is the key behind the known-answer vectors below.
const testSymmetricKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// "hello sudo" sealed with testSymmetricKeyHex and a zero IV.
const helloSudoSealed = "YSuNeC5ivCyXThNtlGIQlg=="

type testEnv struct {
	ks       *keystore.Software
	keys     *KeyManager
	sealer   *Sealer
	pipeline *Pipeline
	logHook  *logtest.Hook
	spans    *tracetest.SpanRecorder
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ks := keystore.NewMemory()
	cfg := newConfig(append([]Option{
		WithLogger(logger),
		WithTracerProvider(tp),
	}, opts...))

	keys := newKeyManager(ks, cfg)
	sealer := newSealer(ks, cfg)
	return &testEnv{
		ks:       ks,
		keys:     keys,
		sealer:   sealer,
		pipeline: newPipeline(keys, sealer, cfg),
		logHook:  hook,
		spans:    spans,
	}
}

// addTestSymmetricKey stores the known-answer key under name.
func (e *testEnv) addTestSymmetricKey(t *testing.T, name string) {
	t.Helper()
	key, err := hex.DecodeString(testSymmetricKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.ks.AddSymmetricKey(context.Background(), key, name); err != nil {
		t.Fatalf("AddSymmetricKey() error = %v", err)
	}
}

// recordingKeyStore records the names passed to symmetric key calls.
type recordingKeyStore struct {
	keystore.KeyStore

	mu        sync.Mutex
	generated []string
	deleted   []string
	calls     []string
}

func (r *recordingKeyStore) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingKeyStore) GenerateSymmetricKey(ctx context.Context, name string) error {
	r.mu.Lock()
	r.generated = append(r.generated, name)
	r.mu.Unlock()
	r.record("GenerateSymmetricKey")
	return r.KeyStore.GenerateSymmetricKey(ctx, name)
}

func (r *recordingKeyStore) DeleteSymmetricKey(ctx context.Context, name string) error {
	r.mu.Lock()
	r.deleted = append(r.deleted, name)
	r.mu.Unlock()
	r.record("DeleteSymmetricKey")
	return r.KeyStore.DeleteSymmetricKey(ctx, name)
}

func (r *recordingKeyStore) AddPassword(ctx context.Context, password []byte, name string) error {
	r.record("AddPassword")
	return r.KeyStore.AddPassword(ctx, password, name)
}

func (r *recordingKeyStore) DeletePassword(ctx context.Context, name string) error {
	r.record("DeletePassword")
	return r.KeyStore.DeletePassword(ctx, name)
}

// nilPublicKeyStore never returns a public key.
type nilPublicKeyStore struct {
	keystore.KeyStore
}

func (nilPublicKeyStore) GetPublicKey(context.Context, string) (*keystore.PublicKey, error) {
	return nil, nil
}
