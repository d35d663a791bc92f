package identity

import "errors"

var (
	ErrBadKey         = errors.New("identity: malformed public key")
	ErrBadSignature   = errors.New("identity: signed pre-key signature verification failed")
	ErrNoSignedPreKey = errors.New("identity: no active signed pre-key")
)
