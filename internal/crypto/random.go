package crypto

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes returns n cryptographically secure random bytes drawn from
// the OS entropy source.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: byte count must be positive", ErrInvalidParam)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRng, err)
	}
	return buf, nil
}

// Zero overwrites b with zero bytes in place. Used to scrub key material,
// IVs, and tags once a context releases them.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
