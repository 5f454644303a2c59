package sudoemail

import (
	"context"
	"crypto/x509"
	"errors"
	"sync"
	"testing"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

func TestKeyManager_GenerateKeyPair(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	device, err := env.keys.GenerateKeyPair(ctx)
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	if device.ID == "" {
		t.Error("device key has no id")
	}
	if device.Algorithm != crypto.AlgorithmRSA {
		t.Errorf("Algorithm = %q, want %q", device.Algorithm, crypto.AlgorithmRSA)
	}
	if device.Format != keystore.FormatRSAPublicKey {
		t.Errorf("Format = %q, want %q", device.Format, keystore.FormatRSAPublicKey)
	}
	if _, err := x509.ParsePKCS1PublicKey(device.Data); err != nil {
		t.Errorf("public key does not parse: %v", err)
	}

	exists, err := env.keys.KeyExists(ctx, device.ID, KeyTypeKeyPair)
	if err != nil || !exists {
		t.Errorf("KeyExists() = %v, %v; want true, nil", exists, err)
	}

	entry := env.logHook.LastEntry()
	if entry == nil || entry.Message != "generated key pair" || entry.Data["key_id"] != device.ID {
		t.Errorf("last log entry = %+v", entry)
	}
}

func TestKeyManager_GenerateKeyPairMissingPublicKey(t *testing.T) {
	keys := NewKeyManager(nilPublicKeyStore{KeyStore: keystore.NewMemory()})

	_, err := keys.GenerateKeyPair(context.Background())
	var internal *InternalError
	if !errors.As(err, &internal) {
		t.Fatalf("GenerateKeyPair() error = %v, want *InternalError", err)
	}
	if !errors.Is(err, ErrInternal) {
		t.Error("error does not match ErrInternal")
	}
}

func TestKeyManager_EnsureCurrentSymmetricKey(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	if _, ok, err := env.keys.GetCurrentSymmetricKeyID(ctx); err != nil || ok {
		t.Fatalf("GetCurrentSymmetricKeyID() before creation = %v, %v", ok, err)
	}

	first, err := env.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		t.Fatalf("EnsureCurrentSymmetricKey() error = %v", err)
	}
	second, err := env.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second call returned %q, want %q", second, first)
	}

	current, ok, err := env.keys.GetCurrentSymmetricKeyID(ctx)
	if err != nil || !ok || current != first {
		t.Errorf("GetCurrentSymmetricKeyID() = %q, %v, %v; want %q, true, nil", current, ok, err, first)
	}

	pointer, err := env.ks.GetPassword(ctx, CurrentSymmetricKeyPointer)
	if err != nil {
		t.Fatal(err)
	}
	if string(pointer) != first {
		t.Errorf("pointer = %q, want %q", pointer, first)
	}
}

func TestKeyManager_NewKeyAfterWipe(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	before, err := env.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Simulate the KeyStore being wiped behind the manager's back.
	if err := env.ks.RemoveAllKeys(ctx); err != nil {
		t.Fatal(err)
	}

	after, err := env.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if after == before {
		t.Error("EnsureCurrentSymmetricKey() returned the wiped key id")
	}
	exists, err := env.keys.KeyExists(ctx, after, KeyTypeSymmetricKey)
	if err != nil || !exists {
		t.Errorf("KeyExists(new key) = %v, %v", exists, err)
	}
}

func TestKeyManager_StalePointer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	if err := env.ks.AddPassword(ctx, []byte("deleted-key"), CurrentSymmetricKeyPointer); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := env.keys.GetCurrentSymmetricKeyID(ctx); err != nil || ok {
		t.Errorf("GetCurrentSymmetricKeyID() with stale pointer ok = %v, err = %v", ok, err)
	}

	id, err := env.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if id == "deleted-key" {
		t.Error("EnsureCurrentSymmetricKey() returned the stale id")
	}
	pointer, _ := env.ks.GetPassword(ctx, CurrentSymmetricKeyPointer)
	if string(pointer) != id {
		t.Errorf("pointer = %q, want %q", pointer, id)
	}
}

func TestKeyManager_PointerWrittenLast(t *testing.T) {
	rec := &recordingKeyStore{KeyStore: keystore.NewMemory()}
	keys := NewKeyManager(rec)

	if _, err := keys.EnsureCurrentSymmetricKey(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"GenerateSymmetricKey", "DeletePassword", "AddPassword"}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("calls = %v, want %v", rec.calls, want)
			break
		}
	}
}

func TestKeyManager_ConcurrentEnsure(t *testing.T) {
	ctx := context.Background()
	rec := &recordingKeyStore{KeyStore: keystore.NewMemory()}
	keys := NewKeyManager(rec)

	const workers = 16
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = keys.EnsureCurrentSymmetricKey(ctx)
		}()
	}
	wg.Wait()

	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got %q, want %q", i, ids[i], ids[0])
		}
	}
	if len(rec.generated) != 1 {
		t.Errorf("generated %d symmetric keys, want 1", len(rec.generated))
	}
}

func TestKeyManager_RotateSymmetricKey(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	old, err := env.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		t.Fatal(err)
	}
	sealed, err := env.sealer.SealString(ctx, "before rotation", old, KeyTypeSymmetricKey)
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := env.keys.RotateSymmetricKey(ctx)
	if err != nil {
		t.Fatalf("RotateSymmetricKey() error = %v", err)
	}
	if rotated == old {
		t.Fatal("RotateSymmetricKey() returned the old id")
	}

	current, err := env.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if current != rotated {
		t.Errorf("current key = %q, want %q", current, rotated)
	}

	got, err := env.sealer.Unseal(ctx, sealed, KeyTypeSymmetricKey)
	if err != nil {
		t.Fatalf("Unseal() with pre-rotation key error = %v", err)
	}
	if got != "before rotation" {
		t.Errorf("Unseal() = %q", got)
	}

	entry := env.logHook.LastEntry()
	if entry == nil || entry.Message != "rotated symmetric key" || entry.Data["previous_key_id"] != old {
		t.Errorf("last log entry = %+v", entry)
	}
}

func TestKeyManager_KeyExistsAndRemoveKey(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	device, err := env.keys.GenerateKeyPair(ctx)
	if err != nil {
		t.Fatal(err)
	}
	symID, err := env.keys.EnsureCurrentSymmetricKey(ctx)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id      string
		keyType KeyType
	}{
		{device.ID, KeyTypeKeyPair},
		{symID, KeyTypeSymmetricKey},
	}

	for _, tt := range tests {
		t.Run(string(tt.keyType), func(t *testing.T) {
			exists, err := env.keys.KeyExists(ctx, tt.id, tt.keyType)
			if err != nil || !exists {
				t.Fatalf("KeyExists() = %v, %v; want true, nil", exists, err)
			}

			// The id exists only as the other kind.
			other := KeyTypeKeyPair
			if tt.keyType == KeyTypeKeyPair {
				other = KeyTypeSymmetricKey
			}
			if exists, _ := env.keys.KeyExists(ctx, tt.id, other); exists {
				t.Errorf("KeyExists(%s) = true for a %s id", other, tt.keyType)
			}

			if err := env.keys.RemoveKey(ctx, tt.id, tt.keyType); err != nil {
				t.Fatalf("RemoveKey() error = %v", err)
			}
			if exists, _ := env.keys.KeyExists(ctx, tt.id, tt.keyType); exists {
				t.Error("key still exists after RemoveKey")
			}
			if err := env.keys.RemoveKey(ctx, tt.id, tt.keyType); err != nil {
				t.Errorf("second RemoveKey() error = %v", err)
			}
		})
	}

	if _, err := env.keys.KeyExists(ctx, "x", KeyType("Other")); err == nil {
		t.Error("KeyExists() with unknown key type succeeded")
	}
	if err := env.keys.RemoveKey(ctx, "x", KeyType("Other")); err == nil {
		t.Error("RemoveKey() with unknown key type succeeded")
	}
}

func TestKeyManager_Reset(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	device, err := env.keys.GenerateKeyPair(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.keys.EnsureCurrentSymmetricKey(ctx); err != nil {
		t.Fatal(err)
	}

	if err := env.keys.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if exists, _ := env.keys.KeyExists(ctx, device.ID, KeyTypeKeyPair); exists {
		t.Error("key pair survived Reset")
	}
	if _, ok, _ := env.keys.GetCurrentSymmetricKeyID(ctx); ok {
		t.Error("current symmetric key survived Reset")
	}
}

func TestKeyManager_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newTestEnv(t)
	if _, err := env.keys.EnsureCurrentSymmetricKey(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("EnsureCurrentSymmetricKey() error = %v, want context.Canceled", err)
	}
}
