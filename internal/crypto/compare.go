package crypto

import "crypto/subtle"

// ConstantTimeEquals reports whether a and b hold the same bytes, in time
// independent of where they first differ. Unequal lengths are rejected
// before the constant-time compare (a length check is unavoidably
// variable-time, but it leaks nothing about key material).
func ConstantTimeEquals(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
