// Package session implements the secure-session engine: an X3DH-style
// initial key agreement followed by a symmetric chain-key ratchet for
// per-message keys (spec.md §3, §4.4).
package session

// State is the lifecycle state of a Session (spec.md §4.4.7).
type State int

const (
	// Fresh means no session exists yet for the peer.
	Fresh State = iota
	// Active means initSession has run at least once; encrypt/decrypt/
	// performKeyRotation are permitted.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "fresh"
}

const keyLen = 32

// Session owns all per-peer ratchet state (spec.md §3). RootKey,
// ChainKeySend and ChainKeyReceive are each exactly 32 bytes and never
// appear on the wire.
type Session struct {
	PeerID string

	RootKey         [keyLen]byte
	ChainKeySend    [keyLen]byte
	ChainKeyReceive [keyLen]byte

	MessageCountSend    uint32
	MessageCountReceive uint32

	// SkippedMessageKeys caches message keys derived while closing a gap
	// in the receive chain, keyed by counter, until consumed by a
	// later out-of-order decrypt.
	SkippedMessageKeys map[uint32][keyLen]byte
	// DecryptedMessageKeys caches every counter successfully decrypted,
	// so a replayed envelope reuses the cached key instead of mutating
	// chain state again.
	DecryptedMessageKeys map[uint32][keyLen]byte

	state State
}

func newSession(peerID string) *Session {
	return &Session{
		PeerID:               peerID,
		SkippedMessageKeys:   make(map[uint32][keyLen]byte),
		DecryptedMessageKeys: make(map[uint32][keyLen]byte),
		state:                Active,
	}
}

// Reconstruct rebuilds a Session in the Active state from persisted
// fields (internal/store, spec.md §6.4). It exists so the store
// package, which is outside this package, can restore sessions without
// access to the unexported state field.
func Reconstruct(peerID string, rootKey, chainKeySend, chainKeyReceive [keyLen]byte, msgSend, msgReceive uint32, skipped, decrypted map[uint32][keyLen]byte) *Session {
	if skipped == nil {
		skipped = make(map[uint32][keyLen]byte)
	}
	if decrypted == nil {
		decrypted = make(map[uint32][keyLen]byte)
	}
	return &Session{
		PeerID:               peerID,
		RootKey:              rootKey,
		ChainKeySend:         chainKeySend,
		ChainKeyReceive:      chainKeyReceive,
		MessageCountSend:     msgSend,
		MessageCountReceive:  msgReceive,
		SkippedMessageKeys:   skipped,
		DecryptedMessageKeys: decrypted,
		state:                Active,
	}
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	if s == nil {
		return Fresh
	}
	return s.state
}

// zero wipes all key material in place. Called when a session is
// replaced or removed (spec.md §5 shared-resource policy).
func (s *Session) zero() {
	for i := range s.RootKey {
		s.RootKey[i] = 0
	}
	for i := range s.ChainKeySend {
		s.ChainKeySend[i] = 0
	}
	for i := range s.ChainKeyReceive {
		s.ChainKeyReceive[i] = 0
	}
	for k := range s.SkippedMessageKeys {
		v := s.SkippedMessageKeys[k]
		for i := range v {
			v[i] = 0
		}
		delete(s.SkippedMessageKeys, k)
	}
	for k := range s.DecryptedMessageKeys {
		v := s.DecryptedMessageKeys[k]
		for i := range v {
			v[i] = 0
		}
		delete(s.DecryptedMessageKeys, k)
	}
}
