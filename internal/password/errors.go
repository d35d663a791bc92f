package password

import "errors"

var (
	// ErrMalformed means an encoded password string did not match the
	// "2$iters$salt$hash" form.
	ErrMalformed = errors.New("password: malformed encoded string")
	// ErrUnsupportedVersion means the encoded string's leading version
	// tag is not one this package can decode.
	ErrUnsupportedVersion = errors.New("password: unsupported version")
	// ErrPepperUnavailable means the pepper could not be loaded or
	// created.
	ErrPepperUnavailable = errors.New("password: pepper unavailable")
)
