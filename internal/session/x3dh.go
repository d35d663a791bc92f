package session

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
	"github.com/jaydenbeard/silentrelay-crypto/internal/identity"
)

var zeroSalt [32]byte

// InitSession runs the initiator side of the X3DH-style handshake
// (spec.md §4.4.1) against a peer's published prekey bundle. It
// verifies the bundle's signature, generates a fresh ephemeral key
// pair, computes the four-way (three-way if the bundle carries no
// one-time pre-key) Diffie-Hellman agreement, and derives the initial
// root key and chain key.
//
// The bundle alone does not let a completely isolated peer derive the
// same session: a full handshake also requires the responder to learn
// this call's ephemeral public key (transmitted as part of the first
// message in a deployed protocol). InitSession returns that public key
// so the caller can hand it to the responder's CompleteHandshake.
func InitSession(own *identity.KeyPair, peerID string, bundle *identity.Bundle) (*Session, *ecdsa.PublicKey, error) {
	if err := bundle.VerifySignature(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	peerIdentityPub, err := crypto.DeserializePublic(bundle.IdentityKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: identity key: %v", ErrBadKey, err)
	}
	peerSignedPreKeyPub, err := crypto.DeserializePublic(bundle.SignedPreKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: signed pre-key: %v", ErrBadKey, err)
	}
	var peerOneTimePub *ecdsa.PublicKey
	if bundle.HasOneTimePreKey() {
		peerOneTimePub, err = crypto.DeserializePublic(bundle.PreKey)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: one-time pre-key: %v", ErrBadKey, err)
		}
	}

	ephemeral, err := crypto.GenerateEC()
	if err != nil {
		return nil, nil, fmt.Errorf("generate ephemeral: %w", err)
	}

	dh1, err := crypto.ECDH(own.Private, peerSignedPreKeyPub)
	if err != nil {
		return nil, nil, fmt.Errorf("dh1: %w", err)
	}
	dh2, err := crypto.ECDH(ephemeral.Private, peerIdentityPub)
	if err != nil {
		return nil, nil, fmt.Errorf("dh2: %w", err)
	}
	dh3, err := crypto.ECDH(ephemeral.Private, peerSignedPreKeyPub)
	if err != nil {
		return nil, nil, fmt.Errorf("dh3: %w", err)
	}

	ikm := append(append(append([]byte{}, dh1...), dh2...), dh3...)
	if peerOneTimePub != nil {
		dh4, err := crypto.ECDH(ephemeral.Private, peerOneTimePub)
		if err != nil {
			return nil, nil, fmt.Errorf("dh4: %w", err)
		}
		ikm = append(ikm, dh4...)
	}

	s, err := deriveSession(peerID, ikm)
	if err != nil {
		return nil, nil, err
	}
	return s, ephemeral.Public(), nil
}

// CompleteHandshake runs the responder side of the handshake that a
// peer started with InitSession. signedPreKey is the responder's
// signed pre-key the initiator's bundle fetch referenced; usedOneTime
// is the one-time pre-key consumed when that bundle was assembled, or
// nil when none was. peerIdentityPub is the initiator's published identity
// public key (the initiator's own bundle, not re-verified here since
// the initiator's bundle signature is orthogonal to this agreement -
// it only contributes an identity key) and peerEphemeralPub is the
// ephemeral public key InitSession returned to the initiator.
//
// The resulting session's root key and chain key are identical to the
// initiator's, because each Diffie-Hellman term pairs the same two key
// pairs regardless of which side computes it.
func CompleteHandshake(own *identity.KeyPair, signedPreKey *identity.SignedPreKey, usedOneTime *identity.OneTimePreKey, peerID string, peerIdentityPub *ecdsa.PublicKey, peerEphemeralPub *ecdsa.PublicKey) (*Session, error) {
	dh1, err := crypto.ECDH(signedPreKey.KeyPair.Private, peerIdentityPub)
	if err != nil {
		return nil, fmt.Errorf("dh1: %w", err)
	}
	dh2, err := crypto.ECDH(own.Private, peerEphemeralPub)
	if err != nil {
		return nil, fmt.Errorf("dh2: %w", err)
	}
	dh3, err := crypto.ECDH(signedPreKey.KeyPair.Private, peerEphemeralPub)
	if err != nil {
		return nil, fmt.Errorf("dh3: %w", err)
	}

	ikm := append(append(append([]byte{}, dh1...), dh2...), dh3...)
	if usedOneTime != nil {
		dh4, err := crypto.ECDH(usedOneTime.KeyPair.Private, peerEphemeralPub)
		if err != nil {
			return nil, fmt.Errorf("dh4: %w", err)
		}
		ikm = append(ikm, dh4...)
	}

	return deriveSession(peerID, ikm)
}

func deriveSession(peerID string, ikm []byte) (*Session, error) {
	out, err := crypto.HKDFExpand(zeroSalt[:], ikm, []byte(rootKeyInfo), 64)
	if err != nil {
		return nil, fmt.Errorf("derive root key: %w", err)
	}

	s := newSession(peerID)
	copy(s.RootKey[:], out[:32])
	copy(s.ChainKeySend[:], out[32:])
	s.ChainKeyReceive = s.ChainKeySend
	return s, nil
}
