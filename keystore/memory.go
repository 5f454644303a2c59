package keystore

import (
	"bytes"
	"context"
	"sync"
)

type memoryKey struct {
	ns   Namespace
	name string
}

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[memoryKey][]byte
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[memoryKey][]byte),
	}
}

func (m *MemoryBackend) Put(ctx context.Context, ns Namespace, name string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[memoryKey{ns, name}] = bytes.Clone(value)
	return nil
}

func (m *MemoryBackend) Get(ctx context.Context, ns Namespace, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[memoryKey{ns, name}]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(value), nil
}

func (m *MemoryBackend) Delete(ctx context.Context, ns Namespace, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if value, ok := m.values[memoryKey{ns, name}]; ok {
		clear(value)
		delete(m.values, memoryKey{ns, name})
	}
	return nil
}

func (m *MemoryBackend) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, value := range m.values {
		clear(value)
		delete(m.values, k)
	}
	return nil
}

// Close drops all values.
func (m *MemoryBackend) Close() error {
	return m.Clear(context.Background())
}
