package keystore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when a value does not exist.
var ErrNotFound = errors.New("not found")

// Namespace partitions the values held by a Backend.
type Namespace string

const (
	NamespacePrivateKey   Namespace = "private"
	NamespacePublicKey    Namespace = "public"
	NamespaceSymmetricKey Namespace = "symmetric"
	NamespacePassword     Namespace = "password"
)

// Namespaces lists every namespace a Software key store writes to.
var Namespaces = []Namespace{
	NamespacePrivateKey,
	NamespacePublicKey,
	NamespaceSymmetricKey,
	NamespacePassword,
}

// Backend persists named byte values for a Software key store.
type Backend interface {
	// Put stores value under (ns, name), replacing any existing value.
	Put(ctx context.Context, ns Namespace, name string, value []byte) error
	// Get returns ErrNotFound when (ns, name) holds no value.
	Get(ctx context.Context, ns Namespace, name string) ([]byte, error)
	// Delete is a no-op when (ns, name) holds no value.
	Delete(ctx context.Context, ns Namespace, name string) error
	// Clear removes every value in every namespace.
	Clear(ctx context.Context) error
	Close() error
}
