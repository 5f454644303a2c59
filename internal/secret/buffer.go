package secret

import (
	"fmt"
	"sync"
)

// closeHook, when set, observes the buffer contents after zeroing and before
// the memory is released.
var closeHook func(data []byte)

// Buffer holds sensitive data that is zeroed on Close.
//
// A Buffer must not be copied after creation.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	locked bool
	closed bool
}

// New allocates a zero-filled buffer of the given size.
// The caller must call Close when the secret is no longer needed.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	data, locked := allocate(size)
	return &Buffer{
		data:   data,
		length: size,
		locked: locked,
	}, nil
}

// NewFromBytes copies source into a new buffer and zeroes source in place,
// so the caller's slice no longer holds the secret.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}

	copy(buffer.data, source)
	Wipe(source)

	return buffer, nil
}

// Bytes returns the secret data. The returned slice points directly into the
// buffer; do not hold it beyond the lifetime of the Buffer. Panics if the
// buffer has been closed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}

	return b.data[:b.length]
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

// Locked reports whether the buffer lives in locked, non-heap memory.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.locked
}

// Close zeroes the buffer contents and releases the memory.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	Wipe(b.data)
	if closeHook != nil {
		closeHook(b.data[:b.length])
	}

	err := release(b.data, b.locked)
	b.data = nil
	return err
}

// Wipe overwrites data with zeros.
func Wipe(data []byte) {
	clear(data)
}
