package crypto

import "errors"

// Sentinel errors for the primitive layer. Callers should use errors.Is
// against these rather than matching on message text.
var (
	ErrInvalidParam = errors.New("crypto: invalid parameter")
	ErrRng          = errors.New("crypto: RNG unavailable")
	ErrAuth         = errors.New("crypto: authentication failed")
	ErrBadKey       = errors.New("crypto: malformed public key")
)

// Kind classifies an error against this package's four sentinels, for
// callers that need to branch on error category without string-matching.
// The session, filecodec, identity and password packages define their own
// sentinels (filecodec.ErrAuth, session.ErrNoSession, ...); an error built
// only on those classifies as KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidParam
	KindRng
	KindAuth
	KindBadKey
)

// KindOf classifies err by unwrapping it against the known sentinels.
// errors.Is remains the primary mechanism for callers that only care
// about one specific sentinel; KindOf exists for callers that branch on
// the whole taxonomy at once (e.g. mapping to an exit code or a metric
// label).
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidParam):
		return KindInvalidParam
	case errors.Is(err, ErrRng):
		return KindRng
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrBadKey):
		return KindBadKey
	default:
		return KindUnknown
	}
}
