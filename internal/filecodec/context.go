package filecodec

import (
	"fmt"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
)

// Context owns the symmetric key and per-operation IV/tag for one encoder.
// A fresh IV is generated on every EncryptOne/EncryptFile call; it must
// never be carried over to encrypt a second, independent buffer with the
// same key (spec.md §9, "IV reuse risk").
type Context struct {
	Key  []byte
	Algo crypto.Algorithm
	IV   []byte
	Tag  []byte
}

// NewContext builds a Context for algo with the given 32-byte key.
func NewContext(algo crypto.Algorithm, key []byte) (*Context, error) {
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidParam, crypto.KeySize, len(key))
	}
	if _, err := crypto.IVSize(algo); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return &Context{Key: append([]byte(nil), key...), Algo: algo}, nil
}

// Close scrubs the key, IV, and tag held by ctx.
func (c *Context) Close() {
	crypto.Zero(c.Key)
	crypto.Zero(c.IV)
	crypto.Zero(c.Tag)
}
