package filecodec

import (
	"encoding/binary"
	"fmt"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
)

// HeaderSize is the fixed, little-endian, packed size of a file header
// (spec.md §6.1).
const HeaderSize = 144

const (
	offFileSize      = 0
	offEncryptedSize = 8
	offAlgo          = 16
	offTimestamp     = 20
	offIV            = 28
	ivFieldSize      = 64
	offTag           = 92
	tagFieldSize     = 16
	offReserved      = 108
	reservedSize     = 32
)

// Header is the authenticated-file-codec header: original plaintext size,
// ciphertext+tag size, algorithm tag, a UNIX timestamp, the IV (left-aligned
// and zero-padded to 64 bytes) and the final AEAD tag. The reserved region
// is always written as zeroes and ignored on decode.
type Header struct {
	FileSize      uint64
	EncryptedSize uint64
	Algo          crypto.Algorithm
	Timestamp     uint64
	IV            []byte
	Tag           []byte
}

// MarshalBinary packs h into the 144-byte wire layout.
func (h *Header) MarshalBinary() ([]byte, error) {
	if len(h.IV) > ivFieldSize {
		return nil, fmt.Errorf("%w: iv longer than %d bytes", ErrInvalidParam, ivFieldSize)
	}
	if len(h.Tag) != tagFieldSize {
		return nil, fmt.Errorf("%w: tag must be %d bytes, got %d", ErrInvalidParam, tagFieldSize, len(h.Tag))
	}

	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint64(buf[offFileSize:], h.FileSize)
	binary.LittleEndian.PutUint64(buf[offEncryptedSize:], h.EncryptedSize)
	binary.LittleEndian.PutUint32(buf[offAlgo:], uint32(h.Algo))
	binary.LittleEndian.PutUint64(buf[offTimestamp:], h.Timestamp)
	copy(buf[offIV:offIV+ivFieldSize], h.IV)
	copy(buf[offTag:offTag+tagFieldSize], h.Tag)
	// buf[offReserved:offReserved+reservedSize] is already zero.
	return buf, nil
}

// UnmarshalBinary unpacks a 144-byte header. The reserved region is read
// but discarded; it is never surfaced to callers.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) != HeaderSize {
		return fmt.Errorf("%w: header must be %d bytes, got %d", ErrIntegrity, HeaderSize, len(buf))
	}

	h.FileSize = binary.LittleEndian.Uint64(buf[offFileSize:])
	h.EncryptedSize = binary.LittleEndian.Uint64(buf[offEncryptedSize:])
	algo := binary.LittleEndian.Uint32(buf[offAlgo:])
	if algo > uint32(crypto.AlgoXChaCha20Poly1305) {
		return fmt.Errorf("%w: unknown algorithm tag %d", ErrIntegrity, algo)
	}
	h.Algo = crypto.Algorithm(algo)
	h.Timestamp = binary.LittleEndian.Uint64(buf[offTimestamp:])

	ivLen, err := crypto.IVSize(h.Algo)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	h.IV = append([]byte(nil), buf[offIV:offIV+ivLen]...)
	h.Tag = append([]byte(nil), buf[offTag:offTag+tagFieldSize]...)
	return nil
}
