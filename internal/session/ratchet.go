package session

import (
	"fmt"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
)

const (
	messageKeyInfo = "message key"
	rootKeyInfo    = "X3DH Root Key"
)

// kdfCK is the symmetric ratchet step (spec.md §4.4.2): deterministic
// given ck, it yields a message key and the next chain key.
func kdfCK(ck [keyLen]byte) (messageKey [keyLen]byte, nextChainKey [keyLen]byte, err error) {
	out, err := crypto.HKDFExpand(nil, ck[:], []byte(messageKeyInfo), 64)
	if err != nil {
		return messageKey, nextChainKey, fmt.Errorf("kdf_ck: %w", err)
	}
	copy(messageKey[:], out[:32])
	copy(nextChainKey[:], out[32:])
	return messageKey, nextChainKey, nil
}

// kdfRK is the root-key ratchet step (spec.md §4.4.3), run by
// PerformKeyRotation. The initial handshake does not call it: deriveSession
// runs the same HKDF directly with an all-zero salt.
func kdfRK(rk [keyLen]byte, dh []byte) (newRootKey [keyLen]byte, newChainKey [keyLen]byte, err error) {
	out, err := crypto.HKDFExpand(rk[:], dh, []byte(rootKeyInfo), 64)
	if err != nil {
		return newRootKey, newChainKey, fmt.Errorf("kdf_rk: %w", err)
	}
	copy(newRootKey[:], out[:32])
	copy(newChainKey[:], out[32:])
	return newRootKey, newChainKey, nil
}
