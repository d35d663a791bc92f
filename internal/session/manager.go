package session

import (
	"crypto/ecdsa"
	"fmt"
	"sync"

	xcrypto "github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
	"github.com/jaydenbeard/silentrelay-crypto/internal/identity"
	"github.com/jaydenbeard/silentrelay-crypto/internal/metrics"
)

// messageAlgo is the fixed AEAD algorithm for session message frames
// (spec.md §4.4.4); unlike the file codec it is not negotiable.
const messageAlgo = xcrypto.AlgoAES256GCM

// Persister durably saves and loads the full session set (spec.md
// §4.5/§6.4). Implemented by internal/store.
type Persister interface {
	SaveAll(sessions map[string]*Session) error
	LoadAll() (map[string]*Session, error)
}

// Manager owns every session for the local participant and serializes
// all mutation behind one non-reentrant mutex (spec.md §5): concurrent
// callers observe FIFO counter assignment and every mutation is
// durable before the call that caused it returns.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	persister Persister
}

// NewManager creates an empty manager. If persister is non-nil, every
// mutating call persists the full session set before returning.
func NewManager(persister Persister) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		persister: persister,
	}
}

// Load replaces the in-memory session set with the persister's saved
// image, if a persister is configured.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persister == nil {
		return nil
	}
	loaded, err := m.persister.LoadAll()
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	m.sessions = loaded
	return nil
}

func (m *Manager) persistLocked() error {
	if m.persister == nil {
		return nil
	}
	if err := m.persister.SaveAll(m.sessions); err != nil {
		return fmt.Errorf("persist sessions: %w", err)
	}
	return nil
}

// HasSession reports whether an active session exists for peerID.
func (m *Manager) HasSession(peerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[peerID]
	return ok
}

// InitSession establishes a new session with peerID from its prekey
// bundle, replacing any prior session for that peer (spec.md §4.4.1,
// §4.4.7). It returns the caller's fresh ephemeral public key, which
// must reach the peer for CompleteHandshake to derive the same keys.
func (m *Manager) InitSession(own *identity.KeyPair, peerID string, bundle *identity.Bundle) (*ecdsa.PublicKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ephemeralPub, err := InitSession(own, peerID, bundle)
	if err != nil {
		return nil, err
	}
	m.replaceLocked(peerID, s)
	if err := m.persistLocked(); err != nil {
		return nil, err
	}
	return ephemeralPub, nil
}

// CompleteHandshake finishes the responder side of a handshake a peer
// started with InitSession, replacing any prior session for that peer.
func (m *Manager) CompleteHandshake(own *identity.KeyPair, signedPreKey *identity.SignedPreKey, usedOneTime *identity.OneTimePreKey, peerID string, peerIdentityPub, peerEphemeralPub *ecdsa.PublicKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := CompleteHandshake(own, signedPreKey, usedOneTime, peerID, peerIdentityPub, peerEphemeralPub)
	if err != nil {
		return err
	}
	m.replaceLocked(peerID, s)
	return m.persistLocked()
}

func (m *Manager) replaceLocked(peerID string, s *Session) {
	if old, ok := m.sessions[peerID]; ok {
		old.zero()
	}
	m.sessions[peerID] = s
}

// RemoveSession destroys the session for peerID, returning it to the
// Fresh state (no stored state).
func (m *Manager) RemoveSession(peerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[peerID]; ok {
		s.zero()
		delete(m.sessions, peerID)
	}
	return m.persistLocked()
}

// EncryptMessage derives the next message key from the session's
// send chain and seals plaintext into a wire envelope (spec.md
// §4.4.4).
func (m *Manager) EncryptMessage(peerID string, plaintext []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[peerID]
	if !ok {
		metrics.SessionEncryptTotal.WithLabelValues("no_session").Inc()
		return nil, ErrNoSession
	}

	mk, nextCk, err := kdfCK(s.ChainKeySend)
	if err != nil {
		return nil, err
	}
	s.ChainKeySend = nextCk
	s.MessageCountSend++
	counter := s.MessageCountSend

	iv, err := xcrypto.RandomBytes(envelopeIVSize)
	if err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	aad := buildAAD(counter, peerID)
	body, err := xcrypto.Seal(messageAlgo, mk[:], iv, aad, plaintext)
	if err != nil {
		return nil, err
	}

	if err := m.persistLocked(); err != nil {
		return nil, err
	}
	metrics.SessionEncryptTotal.WithLabelValues("ok").Inc()
	return encodeEnvelope(counter, iv, body), nil
}

// DecryptMessage opens an envelope against the session's receive
// chain, handling replay, in-order, future-gap and past-skipped
// frames per the key-selection rules (spec.md §4.4.5).
func (m *Manager) DecryptMessage(peerID string, envelope []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[peerID]
	if !ok {
		metrics.SessionDecryptTotal.WithLabelValues("no_session").Inc()
		return nil, ErrNoSession
	}

	counter, iv, body, err := decodeEnvelope(envelope)
	if err != nil {
		metrics.SessionDecryptTotal.WithLabelValues("invalid_envelope").Inc()
		return nil, err
	}

	mk, isReplay, skippedKey, err := selectMessageKey(s, counter)
	if err != nil {
		metrics.SessionDecryptTotal.WithLabelValues("out_of_order").Inc()
		return nil, err
	}

	aad := buildAAD(counter, peerID)
	plaintext, err := xcrypto.Open(messageAlgo, mk[:], iv, aad, body)
	if err != nil {
		metrics.SessionDecryptTotal.WithLabelValues("auth_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	if isReplay {
		metrics.SessionDecryptTotal.WithLabelValues("replay").Inc()
		return plaintext, nil
	}
	if skippedKey {
		delete(s.SkippedMessageKeys, counter)
	}
	s.DecryptedMessageKeys[counter] = mk
	metrics.SkippedKeysCached.WithLabelValues(peerID).Set(float64(len(s.SkippedMessageKeys)))

	if err := m.persistLocked(); err != nil {
		return nil, err
	}
	metrics.SessionDecryptTotal.WithLabelValues("ok").Inc()
	return plaintext, nil
}

// selectMessageKey implements the key-selection rule table (spec.md
// §4.4.5). isReplay reports a cache hit that must not mutate chain
// state; skippedKey reports a hit that was served from (and must be
// removed from) the skipped-key cache.
func selectMessageKey(s *Session, counter uint32) (mk [keyLen]byte, isReplay bool, skippedKey bool, err error) {
	if cached, ok := s.DecryptedMessageKeys[counter]; ok {
		return cached, true, false, nil
	}

	if counter == s.MessageCountReceive+1 {
		mk, next, err := kdfCK(s.ChainKeyReceive)
		if err != nil {
			return mk, false, false, err
		}
		s.ChainKeyReceive = next
		s.MessageCountReceive = counter
		return mk, false, false, nil
	}

	if counter > s.MessageCountReceive+1 {
		ck := s.ChainKeyReceive
		var lastKey [keyLen]byte
		for i := s.MessageCountReceive + 1; i <= counter; i++ {
			key, next, err := kdfCK(ck)
			if err != nil {
				return mk, false, false, err
			}
			ck = next
			if i < counter {
				s.SkippedMessageKeys[i] = key
			}
			lastKey = key
		}
		s.ChainKeyReceive = ck
		s.MessageCountReceive = counter
		return lastKey, false, false, nil
	}

	if counter <= s.MessageCountReceive {
		if cached, ok := s.SkippedMessageKeys[counter]; ok {
			return cached, false, true, nil
		}
	}

	return mk, false, false, ErrOutOfOrder
}

// PerformKeyRotation runs the DH ratchet (spec.md §4.4.6): a fresh
// ephemeral key pair is generated and, if peerDHPub is supplied,
// dhOut is the ECDH agreement against it; otherwise dhOut is locally
// generated randomness, matching the simplified flow specified for a
// toolbox with no transport of its own.
func (m *Manager) PerformKeyRotation(peerID string, peerDHPub *ecdsa.PublicKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[peerID]
	if !ok {
		return ErrNoSession
	}

	ephemeral, err := xcrypto.GenerateEC()
	if err != nil {
		return fmt.Errorf("generate ratchet ephemeral: %w", err)
	}

	var dhOut []byte
	peerDH := "local"
	if peerDHPub != nil {
		dhOut, err = xcrypto.ECDH(ephemeral.Private, peerDHPub)
		if err != nil {
			return fmt.Errorf("dh ratchet: %w", err)
		}
		peerDH = "peer"
	} else {
		dhOut, err = xcrypto.RandomBytes(32)
		if err != nil {
			return fmt.Errorf("generate dhOut: %w", err)
		}
	}

	newRoot, newChain, err := kdfRK(s.RootKey, dhOut)
	if err != nil {
		return err
	}
	s.RootKey = newRoot
	s.ChainKeySend = newChain
	s.ChainKeyReceive = newChain
	s.MessageCountSend = 0
	s.MessageCountReceive = 0
	for k := range s.SkippedMessageKeys {
		delete(s.SkippedMessageKeys, k)
	}
	for k := range s.DecryptedMessageKeys {
		delete(s.DecryptedMessageKeys, k)
	}

	metrics.SessionRatchetTotal.WithLabelValues(peerDH).Inc()
	return m.persistLocked()
}
