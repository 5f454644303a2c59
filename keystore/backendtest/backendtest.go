// Package backendtest holds the behavior every keystore.Backend must share.
// Backend implementations call Run from their own tests.
package backendtest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sudoplatform/sudo-email-go/keystore"
)

// Run exercises newBackend against the keystore.Backend contract. Each
// subtest gets a fresh backend, closed on cleanup.
func Run(t *testing.T, newBackend func(t *testing.T) keystore.Backend) {
	t.Helper()

	open := func(t *testing.T) keystore.Backend {
		b := newBackend(t)
		t.Cleanup(func() { _ = b.Close() })
		return b
	}

	t.Run("GetMissing", func(t *testing.T) {
		b := open(t)
		_, err := b.Get(context.Background(), keystore.NamespacePassword, "missing")
		if !errors.Is(err, keystore.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("PutGet", func(t *testing.T) {
		ctx := context.Background()
		b := open(t)

		if err := b.Put(ctx, keystore.NamespaceSymmetricKey, "k", []byte{1, 2, 3}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := b.Get(ctx, keystore.NamespaceSymmetricKey, "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !bytes.Equal(got, []byte{1, 2, 3}) {
			t.Errorf("Get() = %v, want [1 2 3]", got)
		}
	})

	t.Run("PutReplaces", func(t *testing.T) {
		ctx := context.Background()
		b := open(t)

		if err := b.Put(ctx, keystore.NamespacePassword, "p", []byte("old")); err != nil {
			t.Fatal(err)
		}
		if err := b.Put(ctx, keystore.NamespacePassword, "p", []byte("new")); err != nil {
			t.Fatal(err)
		}
		got, err := b.Get(ctx, keystore.NamespacePassword, "p")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "new" {
			t.Errorf("Get() = %q, want %q", got, "new")
		}
	})

	t.Run("NamespacesIsolated", func(t *testing.T) {
		ctx := context.Background()
		b := open(t)

		for i, ns := range keystore.Namespaces {
			if err := b.Put(ctx, ns, "shared", []byte{byte(i)}); err != nil {
				t.Fatal(err)
			}
		}
		for i, ns := range keystore.Namespaces {
			got, err := b.Get(ctx, ns, "shared")
			if err != nil {
				t.Fatalf("Get(%s) error = %v", ns, err)
			}
			if !bytes.Equal(got, []byte{byte(i)}) {
				t.Errorf("Get(%s) = %v, want [%d]", ns, got, i)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		b := open(t)

		if err := b.Put(ctx, keystore.NamespacePrivateKey, "k", []byte("x")); err != nil {
			t.Fatal(err)
		}
		if err := b.Delete(ctx, keystore.NamespacePrivateKey, "k"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := b.Get(ctx, keystore.NamespacePrivateKey, "k"); !errors.Is(err, keystore.ErrNotFound) {
			t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
		}
		if err := b.Delete(ctx, keystore.NamespacePrivateKey, "k"); err != nil {
			t.Errorf("Delete() of absent value error = %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		ctx := context.Background()
		b := open(t)

		for _, ns := range keystore.Namespaces {
			for _, name := range []string{"a", "b"} {
				if err := b.Put(ctx, ns, name, []byte(name)); err != nil {
					t.Fatal(err)
				}
			}
		}
		if err := b.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		for _, ns := range keystore.Namespaces {
			for _, name := range []string{"a", "b"} {
				if _, err := b.Get(ctx, ns, name); !errors.Is(err, keystore.ErrNotFound) {
					t.Errorf("Get(%s, %s) after Clear error = %v", ns, name, err)
				}
			}
		}
	})

	t.Run("SoftwareRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		ks := keystore.NewSoftware(open(t))

		if err := ks.GenerateSymmetricKey(ctx, "sym"); err != nil {
			t.Fatalf("GenerateSymmetricKey() error = %v", err)
		}
		sealed, err := ks.EncryptWithSymmetricKeyName(ctx, "sym", []byte("payload"), nil)
		if err != nil {
			t.Fatalf("EncryptWithSymmetricKeyName() error = %v", err)
		}
		plain, err := ks.DecryptWithSymmetricKeyName(ctx, "sym", sealed, nil)
		if err != nil {
			t.Fatalf("DecryptWithSymmetricKeyName() error = %v", err)
		}
		if string(plain) != "payload" {
			t.Errorf("round trip = %q, want %q", plain, "payload")
		}
	})
}
