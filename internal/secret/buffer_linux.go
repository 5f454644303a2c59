//go:build linux

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func allocate(size int) ([]byte, bool) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return make([]byte, size), false
	}

	// A buffer that can be swapped out is no better than the heap.
	if err := unix.Mlock(data); err != nil {
		_ = unix.Munmap(data)
		return make([]byte, size), false
	}

	// Not supported on every kernel; swap protection still holds.
	_ = unix.Madvise(data, unix.MADV_DONTDUMP)

	return data, true
}

func release(data []byte, locked bool) error {
	if !locked {
		return nil
	}

	var firstError error
	if err := unix.Munlock(data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	return firstError
}
