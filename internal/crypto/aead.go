package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// newAEAD builds the cipher.AEAD for algo, validating the key length
// against what the cipher actually requires.
func newAEAD(algo Algorithm, key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidParam, KeySize, len(key))
	}

	switch algo {
	case AlgoAES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
		}
		return cipher.NewGCM(block)
	case AlgoChaCha20Poly1305:
		return chacha20poly1305.New(key)
	case AlgoXChaCha20Poly1305:
		return chacha20poly1305.NewX(key)
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrInvalidParam, algo)
	}
}

// Seal encrypts pt under (algo, key, iv) with associated data aad, returning
// ciphertext||tag. The caller owns iv generation; Seal never reuses or
// derives an IV itself.
func Seal(algo Algorithm, key, iv, aad, pt []byte) ([]byte, error) {
	aead, err := newAEAD(algo, key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidParam, aead.NonceSize(), len(iv))
	}
	return aead.Seal(nil, iv, pt, aad), nil
}

// Open decrypts ct (ciphertext||tag) under (algo, key, iv, aad). A tag
// mismatch, truncated input, or wrong key/AAD all surface as ErrAuth with
// no partial plaintext returned.
func Open(algo Algorithm, key, iv, aad, ct []byte) ([]byte, error) {
	aead, err := newAEAD(algo, key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidParam, aead.NonceSize(), len(iv))
	}
	if len(ct) < TagSize {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrAuth)
	}
	pt, err := aead.Open(nil, iv, ct, aad)
	if err != nil {
		return nil, fmt.Errorf("%w", ErrAuth)
	}
	return pt, nil
}
