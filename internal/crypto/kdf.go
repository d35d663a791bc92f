package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// HKDFExpand derives L bytes via HKDF-SHA-256 (RFC 5869) from ikm, salt,
// and info. An empty salt is treated by the underlying implementation as a
// zero-filled block the size of the hash output, per RFC 5869 §2.2.
func HKDFExpand(salt, ikm, info []byte, length int) ([]byte, error) {
	if len(ikm) == 0 {
		return nil, fmt.Errorf("%w: ikm must not be empty", ErrInvalidParam)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: length must be positive", ErrInvalidParam)
	}

	out := make([]byte, length)
	r := hkdf.New(sha256.New, ikm, salt, info)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: hkdf expand failed: %v", ErrInvalidParam, err)
	}
	return out, nil
}

// HMACSHA512 computes the 64-byte HMAC-SHA-512 of msg under key.
func HMACSHA512(key, msg []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// PBKDF2SHA512 derives length bytes using PBKDF2-HMAC-SHA-512 with iters
// rounds. iters must be at least 1.
func PBKDF2SHA512(password, salt []byte, iters, length int) ([]byte, error) {
	if iters < 1 {
		return nil, fmt.Errorf("%w: iters must be >= 1", ErrInvalidParam)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: length must be positive", ErrInvalidParam)
	}
	return pbkdf2.Key(password, salt, iters, length, sha512.New), nil
}
