package crypto

import "io"

// SetRandReaderForTesting swaps the entropy source used for key generation
// and returns a func that restores it.
func SetRandReaderForTesting(r io.Reader) func() {
	prev := randReader
	randReader = r
	return func() { randReader = prev }
}
