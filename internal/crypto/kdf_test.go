package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
)

func TestHKDFExpandDeterministic(t *testing.T) {
	ikm := []byte("input key material")
	salt := []byte("salt")
	info := []byte("info")

	out1, err := crypto.HKDFExpand(salt, ikm, info, 64)
	require.NoError(t, err)
	out2, err := crypto.HKDFExpand(salt, ikm, info, 64)
	require.NoError(t, err)
	require.Equal(t, out1, out2)

	t.Run("empty salt treated as zero block", func(t *testing.T) {
		zeroSalt := make([]byte, 32)
		withZeroSalt, err := crypto.HKDFExpand(zeroSalt, ikm, info, 64)
		require.NoError(t, err)
		withEmptySalt, err := crypto.HKDFExpand(nil, ikm, info, 64)
		require.NoError(t, err)
		require.Equal(t, withZeroSalt, withEmptySalt)
	})

	t.Run("different info diverges", func(t *testing.T) {
		other, err := crypto.HKDFExpand(salt, ikm, []byte("other info"), 64)
		require.NoError(t, err)
		require.NotEqual(t, out1, other)
	})

	t.Run("rejects empty ikm", func(t *testing.T) {
		_, err := crypto.HKDFExpand(salt, nil, info, 64)
		require.ErrorIs(t, err, crypto.ErrInvalidParam)
	})
}

func TestHMACSHA512Length(t *testing.T) {
	mac := crypto.HMACSHA512([]byte("key"), []byte("message"))
	require.Len(t, mac, 64)
}

func TestPBKDF2SHA512(t *testing.T) {
	salt, err := crypto.RandomBytes(32)
	require.NoError(t, err)

	out1, err := crypto.PBKDF2SHA512([]byte("password"), salt, 1000, 16)
	require.NoError(t, err)
	out2, err := crypto.PBKDF2SHA512([]byte("password"), salt, 1000, 16)
	require.NoError(t, err)
	require.Equal(t, out1, out2)

	t.Run("rejects zero iterations", func(t *testing.T) {
		_, err := crypto.PBKDF2SHA512([]byte("password"), salt, 0, 16)
		require.ErrorIs(t, err, crypto.ErrInvalidParam)
	})
}
