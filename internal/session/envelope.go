package session

import (
	"encoding/binary"
)

const (
	counterSize  = 4
	envelopeIVSize = 12
	minEnvelopeSize = counterSize + envelopeIVSize + 16 // + tag
)

// encodeEnvelope builds the wire message `u32_be(counter) || iv || body`
// (spec.md §6.3), where body is ciphertext||tag.
func encodeEnvelope(counter uint32, iv, body []byte) []byte {
	out := make([]byte, counterSize+len(iv)+len(body))
	binary.BigEndian.PutUint32(out[:counterSize], counter)
	copy(out[counterSize:], iv)
	copy(out[counterSize+len(iv):], body)
	return out
}

// decodeEnvelope splits a wire message into its counter, IV and AEAD
// body, rejecting anything shorter than the minimum frame.
func decodeEnvelope(envelope []byte) (counter uint32, iv, body []byte, err error) {
	if len(envelope) < minEnvelopeSize {
		return 0, nil, nil, ErrInvalidEnvelope
	}
	counter = binary.BigEndian.Uint32(envelope[:counterSize])
	iv = envelope[counterSize : counterSize+envelopeIVSize]
	body = envelope[counterSize+envelopeIVSize:]
	return counter, iv, body, nil
}

// buildAAD builds the additional authenticated data for a frame: the
// big-endian counter followed by the UTF-8 participant id (spec.md
// §4.4.4/§4.4.5).
func buildAAD(counter uint32, participantID string) []byte {
	out := make([]byte, counterSize+len(participantID))
	binary.BigEndian.PutUint32(out[:counterSize], counter)
	copy(out[counterSize:], participantID)
	return out
}
