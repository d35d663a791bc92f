package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jaydenbeard/silentrelay-crypto/internal/session"
)

const keyLen = 32

// marshalSession encodes one session's serialized form (spec.md §6.4,
// the `serialized` sub-layout).
func marshalSession(s *session.Session) ([]byte, error) {
	var buf bytes.Buffer

	if err := writeLenPrefixed(&buf, s.RootKey[:]); err != nil {
		return nil, err
	}
	if err := writeLenPrefixed(&buf, s.ChainKeySend[:]); err != nil {
		return nil, err
	}
	if err := writeLenPrefixed(&buf, s.ChainKeyReceive[:]); err != nil {
		return nil, err
	}
	if err := writeUint32(&buf, s.MessageCountSend); err != nil {
		return nil, err
	}
	if err := writeUint32(&buf, s.MessageCountReceive); err != nil {
		return nil, err
	}

	if err := writeKeyMap(&buf, s.SkippedMessageKeys); err != nil {
		return nil, err
	}
	if err := writeKeyMap(&buf, s.DecryptedMessageKeys); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeKeyMap(w io.Writer, m map[uint32][keyLen]byte) error {
	if err := writeUint32(w, uint32(len(m))); err != nil {
		return err
	}
	for id, key := range m {
		if err := writeUint32(w, id); err != nil {
			return err
		}
		if err := writeLenPrefixed(w, key[:]); err != nil {
			return err
		}
	}
	return nil
}

// unmarshalSession decodes one session's serialized form. A truncated
// tail after the counters (missing or partial skipped/decrypted
// sections) is tolerated and yields empty maps, per spec.md §6.4.
func unmarshalSession(peerID string, data []byte) (*session.Session, error) {
	r := bytes.NewReader(data)

	rootKey, err := readFixedKey(r)
	if err != nil {
		return nil, fmt.Errorf("root key: %w", err)
	}
	ckSend, err := readFixedKey(r)
	if err != nil {
		return nil, fmt.Errorf("send chain key: %w", err)
	}
	ckReceive, err := readFixedKey(r)
	if err != nil {
		return nil, fmt.Errorf("receive chain key: %w", err)
	}
	msgSend, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("send counter: %w", err)
	}
	msgReceive, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("receive counter: %w", err)
	}

	skipped, err := readKeyMap(r)
	if err != nil {
		skipped = nil
	}
	decrypted, err := readKeyMap(r)
	if err != nil {
		decrypted = nil
	}

	return session.Reconstruct(peerID, rootKey, ckSend, ckReceive, msgSend, msgReceive, skipped, decrypted), nil
}

func readFixedKey(r io.Reader) ([keyLen]byte, error) {
	var key [keyLen]byte
	b, err := readLenPrefixed(r)
	if err != nil {
		return key, err
	}
	if len(b) != keyLen {
		return key, fmt.Errorf("expected %d bytes, got %d", keyLen, len(b))
	}
	copy(key[:], b)
	return key, nil
}

func readKeyMap(r io.Reader) (map[uint32][keyLen]byte, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m := make(map[uint32][keyLen]byte, count)
	for i := uint32(0); i < count; i++ {
		id, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		key, err := readFixedKey(r)
		if err != nil {
			return nil, err
		}
		m[id] = key
	}
	return m, nil
}
