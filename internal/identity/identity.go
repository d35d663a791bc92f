// Package identity models the long-lived key material a participant
// publishes so peers can establish a session without them being online:
// an identity key, one signed pre-key, and a pool of one-time pre-keys
// (spec.md §3, §4.4.1).
package identity

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
)

// NewDeviceID derives the u32 device identifier carried in the wire
// prekey bundle (spec.md §6.2) from a freshly generated UUID, giving
// each local device a collision-resistant handle without changing the
// wire format (mirrors Session.DeviceID in the teacher's session
// handling, adapted from a string session id to a truncated UUID).
func NewDeviceID() uint32 {
	id := uuid.New()
	return binary.BigEndian.Uint32(id[:4])
}

// KeyPair is the long-lived ECDSA/ECDH identity key pair on P-256.
type KeyPair struct {
	*crypto.KeyPair
}

// GenerateIdentity creates a new long-term identity key pair.
func GenerateIdentity() (*KeyPair, error) {
	kp, err := crypto.GenerateEC()
	if err != nil {
		return nil, err
	}
	return &KeyPair{KeyPair: kp}, nil
}

// SignedPreKey is the medium-term key whose public half is signed by the
// owning identity key. Exactly one is active per participant at a time.
type SignedPreKey struct {
	KeyID     uint32
	KeyPair   *crypto.KeyPair
	Signature []byte
}

// GenerateSignedPreKey creates a new signed pre-key for keyID, signed by
// identity.
func GenerateSignedPreKey(identity *KeyPair, keyID uint32) (*SignedPreKey, error) {
	kp, err := crypto.GenerateEC()
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(identity.Private, crypto.SerializePublic(kp.Public()))
	if err != nil {
		return nil, fmt.Errorf("sign pre-key: %w", err)
	}

	return &SignedPreKey{KeyID: keyID, KeyPair: kp, Signature: sig}, nil
}

// OneTimePreKey is a single-use key, served to at most one requester.
type OneTimePreKey struct {
	KeyID   uint32
	KeyPair *crypto.KeyPair
}

// PreKeyStore holds one participant's signed pre-key and one-time pre-key
// pool. It is not safe for concurrent use without an external lock; it
// has no lock of its own, and the session manager in internal/session
// does not hold or lock a PreKeyStore.
type PreKeyStore struct {
	Identity       *KeyPair
	RegistrationID uint32
	DeviceID       uint32
	Signed         *SignedPreKey
	oneTime        map[uint32]*OneTimePreKey
	// reserved holds one-time pre-keys already handed out by Bundle but
	// not yet finalized by a completed handshake (internal/session
	// CompleteHandshake needs the private half to finish the agreement
	// after the key has left the unused pool).
	reserved  map[uint32]*OneTimePreKey
	nextKeyID uint32
}

// NewPreKeyStore creates a store rooted at identity, with no signed
// pre-key and no one-time pre-keys yet.
func NewPreKeyStore(identity *KeyPair, registrationID, deviceID uint32) *PreKeyStore {
	return &PreKeyStore{
		Identity:       identity,
		RegistrationID: registrationID,
		DeviceID:       deviceID,
		oneTime:        make(map[uint32]*OneTimePreKey),
		reserved:       make(map[uint32]*OneTimePreKey),
		nextKeyID:      1,
	}
}

// RotateSignedPreKey generates and installs a new signed pre-key,
// replacing any previous one.
func (s *PreKeyStore) RotateSignedPreKey() error {
	spk, err := GenerateSignedPreKey(s.Identity, s.nextKeyID)
	if err != nil {
		return err
	}
	s.nextKeyID++
	s.Signed = spk
	return nil
}

// GenerateOneTimePreKeys adds n fresh one-time pre-keys to the pool.
func (s *PreKeyStore) GenerateOneTimePreKeys(n int) ([]*OneTimePreKey, error) {
	generated := make([]*OneTimePreKey, 0, n)
	for i := 0; i < n; i++ {
		kp, err := crypto.GenerateEC()
		if err != nil {
			return nil, err
		}
		otk := &OneTimePreKey{KeyID: s.nextKeyID, KeyPair: kp}
		s.nextKeyID++
		s.oneTime[otk.KeyID] = otk
		generated = append(generated, otk)
	}
	return generated, nil
}

// TakeOneTimePreKey removes and returns the one-time pre-key for keyID, if
// present. It is served at most once: a second call for the same keyID
// reports ok == false (spec.md §3 invariant).
func (s *PreKeyStore) TakeOneTimePreKey(keyID uint32) (*OneTimePreKey, bool) {
	otk, ok := s.oneTime[keyID]
	if !ok {
		return nil, false
	}
	delete(s.oneTime, keyID)
	return otk, true
}

// Peek returns whether keyID is still available, without consuming it.
func (s *PreKeyStore) Peek(keyID uint32) bool {
	_, ok := s.oneTime[keyID]
	return ok
}

// Count returns the number of unused one-time pre-keys.
func (s *PreKeyStore) Count() int {
	return len(s.oneTime)
}

// Bundle assembles the wire-visible prekey bundle (spec.md §6.2) for this
// participant. If preferOneTime is true and a one-time pre-key is
// available, it is included and moved out of the unused pool into the
// reserved set, from which TakeReservedPreKey later removes it; otherwise
// preKeyId is 0 and preKey is empty.
func (s *PreKeyStore) Bundle(preferOneTime bool) (*Bundle, error) {
	if s.Signed == nil {
		return nil, ErrNoSignedPreKey
	}

	b := &Bundle{
		RegistrationID: s.RegistrationID,
		DeviceID:       s.DeviceID,
		IdentityKey:    crypto.SerializePublic(s.Identity.Public()),
		SignedPreKey:   crypto.SerializePublic(s.Signed.KeyPair.Public()),
		Signature:      s.Signed.Signature,
	}

	if preferOneTime {
		for keyID, otk := range s.oneTime {
			b.PreKeyID = keyID
			b.PreKey = crypto.SerializePublic(otk.KeyPair.Public())
			delete(s.oneTime, keyID)
			s.reserved[keyID] = otk
			break
		}
	}

	return b, nil
}

// TakeReservedPreKey returns and forgets the one-time pre-key served by
// an earlier Bundle call for keyID, finalizing its one-shot use once
// the handshake that consumed it has completed.
func (s *PreKeyStore) TakeReservedPreKey(keyID uint32) (*OneTimePreKey, bool) {
	otk, ok := s.reserved[keyID]
	if !ok {
		return nil, false
	}
	delete(s.reserved, keyID)
	return otk, true
}

// Bundle is the wire-visible prekey bundle a participant publishes
// (spec.md §6.2). PreKeyID == 0 with an empty PreKey means "no one-time
// key included".
type Bundle struct {
	RegistrationID uint32
	DeviceID       uint32
	IdentityKey    []byte
	SignedPreKey   []byte
	Signature      []byte
	PreKeyID       uint32
	PreKey         []byte
}

// VerifySignature checks that b.Signature is a valid ECDSA signature by
// b.IdentityKey over b.SignedPreKey (spec.md §4.4.1 precondition).
func (b *Bundle) VerifySignature() error {
	identityPub, err := crypto.DeserializePublic(b.IdentityKey)
	if err != nil {
		return fmt.Errorf("%w: identity key: %v", ErrBadKey, err)
	}
	if !crypto.Verify(identityPub, b.SignedPreKey, b.Signature) {
		return ErrBadSignature
	}
	return nil
}

// HasOneTimePreKey reports whether the bundle includes a one-time
// pre-key.
func (b *Bundle) HasOneTimePreKey() bool {
	return b.PreKeyID != 0 && len(b.PreKey) > 0
}
