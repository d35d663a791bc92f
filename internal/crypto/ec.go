package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// KeyPair is a P-256 key pair used for both ECDH (X3DH, ratchet) and ECDSA
// (signed pre-key signatures). The source repo this was modeled on kept
// separate X25519/Ed25519 pairs for DH and signing; spec.md §3/§4.1 fixes a
// single NIST P-256 pair serving both roles, so one *ecdsa.PrivateKey is
// the sole owned value.
type KeyPair struct {
	Private *ecdsa.PrivateKey
}

// GenerateEC generates a new P-256 key pair.
func GenerateEC() (*KeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRng, err)
	}
	return &KeyPair{Private: priv}, nil
}

// Public returns the public half of kp.
func (kp *KeyPair) Public() *ecdsa.PublicKey {
	return &kp.Private.PublicKey
}

// SerializePublic encodes pub as a 33-byte compressed P-256 point.
func SerializePublic(pub *ecdsa.PublicKey) []byte {
	return elliptic.MarshalCompressed(elliptic.P256(), pub.X, pub.Y)
}

// DeserializePublic decodes a 33-byte compressed P-256 point.
func DeserializePublic(data []byte) (*ecdsa.PublicKey, error) {
	if len(data) != 33 {
		return nil, fmt.Errorf("%w: compressed point must be 33 bytes, got %d", ErrBadKey, len(data))
	}
	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), data)
	if x == nil {
		return nil, fmt.Errorf("%w: not a valid P-256 point", ErrBadKey)
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}

// ECDH performs a P-256 Diffie-Hellman exchange and returns the 32-byte raw
// X-coordinate of the shared point.
func ECDH(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) ([]byte, error) {
	ecdhPriv, err := priv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	ecdhPub, err := pub.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	shared, err := ecdhPriv.ECDH(ecdhPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return shared, nil
}

// Sign produces a DER-encoded ECDSA signature over SHA-256(msg).
func Sign(priv *ecdsa.PrivateKey, msg []byte) ([]byte, error) {
	hash := sha256.Sum256(msg)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, hash[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return sig, nil
}

// Verify checks a DER-encoded ECDSA signature over SHA-256(msg).
func Verify(pub *ecdsa.PublicKey, msg, sig []byte) bool {
	hash := sha256.Sum256(msg)
	return ecdsa.VerifyASN1(pub, hash[:], sig)
}
