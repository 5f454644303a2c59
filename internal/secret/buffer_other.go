//go:build !linux

package secret

func allocate(size int) ([]byte, bool) {
	return make([]byte, size), false
}

func release([]byte, bool) error {
	return nil
}
