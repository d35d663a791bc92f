package session

import "errors"

var (
	ErrNoSession      = errors.New("session: no session for peer")
	ErrBadSignature   = errors.New("session: bundle signature verification failed")
	ErrBadKey         = errors.New("session: malformed public key in bundle")
	ErrAuth           = errors.New("session: envelope authentication failed")
	ErrInvalidEnvelope = errors.New("session: malformed envelope")
	ErrOutOfOrder     = errors.New("session: counter has no applicable key-selection rule")
)
