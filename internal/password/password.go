// Package password implements the salt+pepper+PBKDF2+memory-hard
// password codec (spec.md §4.5). It deliberately does not use Argon2id;
// this codec follows its own construction end to end.
package password

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
	"github.com/jaydenbeard/silentrelay-crypto/internal/metrics"
)

const (
	version = "2"

	saltSize = 32
	hashSize = sha512.Size // 64, output of the final HMAC-SHA-512

	pbkdf2OutputSize = 16
	mhfBufferSize    = 8 * 1024
	mhfIterations    = 1000

	// DefaultIterations is used when a caller does not override it.
	DefaultIterations = 100000
)

// b64 is the one canonical alphabet used on both encode and decode
// (spec.md §4.5). Standard, padded base64.
var b64 = base64.StdEncoding

func decodePepperField(s string) []byte {
	b, err := b64.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// Encoder produces and checks encoded password strings using a fixed
// pepper source and iteration count.
type Encoder struct {
	peppers PepperStore
	iters   int
}

// NewEncoder builds an Encoder backed by peppers, hashing with iters
// PBKDF2 rounds.
func NewEncoder(peppers PepperStore, iters int) *Encoder {
	if iters < 1 {
		iters = DefaultIterations
	}
	return &Encoder{peppers: peppers, iters: iters}
}

// Encode hashes pw into the self-describing string form
// "2$iters$b64(salt)$b64(hash)" (spec.md §6, §4.5). Every call uses a
// fresh random salt, so two calls on the same password never match
// byte for byte (property P1).
func (e *Encoder) Encode(pw string) (string, error) {
	salt, err := crypto.RandomBytes(saltSize)
	if err != nil {
		metrics.PasswordEncodeTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	hash, err := e.hash(pw, salt)
	if err != nil {
		metrics.PasswordEncodeTotal.WithLabelValues("error").Inc()
		return "", err
	}

	encoded := fmt.Sprintf("%s$%d$%s$%s", version, e.iters, b64.EncodeToString(salt), b64.EncodeToString(hash))
	metrics.PasswordEncodeTotal.WithLabelValues("ok").Inc()
	return encoded, nil
}

// Matches reports whether pw reproduces the hash stored in encoded,
// recomputing with the salt and iteration count embedded in encoded.
func (e *Encoder) Matches(pw, encoded string) (bool, error) {
	iters, salt, wantHash, err := parse(encoded)
	if err != nil {
		metrics.PasswordMatchTotal.WithLabelValues("malformed").Inc()
		return false, err
	}

	gotHash, err := hashWithIterations(pw, salt, iters, e.peppers)
	if err != nil {
		metrics.PasswordMatchTotal.WithLabelValues("error").Inc()
		return false, err
	}

	ok := crypto.ConstantTimeEquals(gotHash, wantHash)
	if ok {
		metrics.PasswordMatchTotal.WithLabelValues("match").Inc()
	} else {
		metrics.PasswordMatchTotal.WithLabelValues("mismatch").Inc()
	}
	return ok, nil
}

func (e *Encoder) hash(pw string, salt []byte) ([]byte, error) {
	return hashWithIterations(pw, salt, e.iters, e.peppers)
}

// hashWithIterations runs the full construction: peppered HMAC, PBKDF2,
// the sequential memory-hard step, and a final keyed digest over the
// result (spec.md §4.5).
func hashWithIterations(pw string, salt []byte, iters int, peppers PepperStore) ([]byte, error) {
	pepper, err := peppers.Pepper()
	if err != nil {
		return nil, err
	}

	peppered := crypto.HMACSHA512(pepper, []byte(pw))

	pbkdf2Out, err := crypto.PBKDF2SHA512(peppered, salt, iters, pbkdf2OutputSize)
	if err != nil {
		return nil, fmt.Errorf("password: pbkdf2: %w", err)
	}

	mhf := memoryHard(pbkdf2Out, salt)

	return crypto.HMACSHA512(salt, mhf), nil
}

// memoryHard is a simple sequential memory-hard construction: fill an
// 8 KiB buffer by repeatedly hashing the previous block keyed with salt,
// take one SHA-512 digest over the whole buffer, then re-hash that 64-byte
// digest so that mhfIterations SHA-512 calls run in total, and return the
// final digest.
func memoryHard(seed, salt []byte) []byte {
	buf := make([]byte, mhfBufferSize)

	block := crypto.HMACSHA512(salt, seed)
	pos := 0
	for pos < len(buf) {
		n := copy(buf[pos:], block)
		pos += n
		block = crypto.HMACSHA512(salt, block)
	}

	digest := sha512.Sum512(buf)
	out := digest[:]
	for i := 1; i < mhfIterations; i++ {
		sum := sha512.Sum512(out)
		out = sum[:]
	}
	return out
}

// parse splits an encoded string into its iteration count, salt, and
// hash. ErrMalformed/ErrUnsupportedVersion surface format mismatches.
func parse(encoded string) (iters int, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 {
		return 0, nil, nil, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformed, len(parts))
	}
	if parts[0] != version {
		return 0, nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, parts[0])
	}

	iters, err = strconv.Atoi(parts[1])
	if err != nil || iters < 1 {
		return 0, nil, nil, fmt.Errorf("%w: bad iteration count %q", ErrMalformed, parts[1])
	}

	salt, err = b64.DecodeString(parts[2])
	if err != nil || len(salt) != saltSize {
		return 0, nil, nil, fmt.Errorf("%w: bad salt field", ErrMalformed)
	}

	hash, err = b64.DecodeString(parts[3])
	if err != nil || len(hash) != hashSize {
		return 0, nil, nil, fmt.Errorf("%w: bad hash field", ErrMalformed)
	}

	return iters, salt, hash, nil
}
