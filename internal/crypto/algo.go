package crypto

import "fmt"

// Algorithm identifies one of the AEAD ciphers the toolbox supports. The
// numeric values are part of the on-disk file header (spec §6.1), so they
// must never be renumbered.
type Algorithm uint32

const (
	AlgoAES256GCM Algorithm = iota
	AlgoChaCha20Poly1305
	AlgoXChaCha20Poly1305
)

const (
	KeySize = 32
	TagSize = 16
)

// IVSize returns the nonce length required by algo.
func IVSize(algo Algorithm) (int, error) {
	switch algo {
	case AlgoAES256GCM, AlgoChaCha20Poly1305:
		return 12, nil
	case AlgoXChaCha20Poly1305:
		return 24, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm %d", ErrInvalidParam, algo)
	}
}

func (a Algorithm) String() string {
	switch a {
	case AlgoAES256GCM:
		return "AES_256_GCM"
	case AlgoChaCha20Poly1305:
		return "CHACHA20_POLY1305"
	case AlgoXChaCha20Poly1305:
		return "XCHACHA20_POLY1305"
	default:
		return "UNKNOWN"
	}
}
