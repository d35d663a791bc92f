package filecodec

import (
	"fmt"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
)

// EncryptOne seals plaintext into a self-contained envelope: iv||ct||tag.
// A fresh IV is generated for every call and stored back into ctx, along
// with the tag the AEAD produced, so the caller can introspect the last
// operation without re-parsing the envelope.
func EncryptOne(ctx *Context, plaintext []byte) ([]byte, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: nil context", ErrInvalidParam)
	}

	ivLen, err := crypto.IVSize(ctx.Algo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}

	iv, err := crypto.RandomBytes(ivLen)
	if err != nil {
		return nil, err
	}

	sealed, err := crypto.Seal(ctx.Algo, ctx.Key, iv, nil, plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}

	ctx.IV = iv
	ctx.Tag = append([]byte(nil), sealed[len(sealed)-crypto.TagSize:]...)

	envelope := make([]byte, 0, ivLen+len(sealed))
	envelope = append(envelope, iv...)
	envelope = append(envelope, sealed...)
	return envelope, nil
}

// DecryptOne opens an envelope built by EncryptOne: iv||ct||tag.
func DecryptOne(ctx *Context, envelope []byte) ([]byte, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: nil context", ErrInvalidParam)
	}

	ivLen, err := crypto.IVSize(ctx.Algo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}

	minLen := ivLen + crypto.TagSize + 1
	if len(envelope) < minLen {
		return nil, fmt.Errorf("%w: envelope shorter than %d bytes", ErrInvalidParam, minLen)
	}

	iv := envelope[:ivLen]
	body := envelope[ivLen:]

	pt, err := crypto.Open(ctx.Algo, ctx.Key, iv, nil, body)
	if err != nil {
		return nil, fmt.Errorf("%w", ErrAuth)
	}

	ctx.IV = append([]byte(nil), iv...)
	ctx.Tag = append([]byte(nil), body[len(body)-crypto.TagSize:]...)
	return pt, nil
}
