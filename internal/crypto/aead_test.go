package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
)

func TestSealOpenRoundTrip(t *testing.T) {
	algos := []crypto.Algorithm{
		crypto.AlgoAES256GCM,
		crypto.AlgoChaCha20Poly1305,
		crypto.AlgoXChaCha20Poly1305,
	}

	for _, algo := range algos {
		algo := algo
		t.Run(algo.String(), func(t *testing.T) {
			key, err := crypto.RandomBytes(crypto.KeySize)
			require.NoError(t, err)

			ivLen, err := crypto.IVSize(algo)
			require.NoError(t, err)
			iv, err := crypto.RandomBytes(ivLen)
			require.NoError(t, err)

			aad := []byte("associated-data")
			pt := []byte("the quick brown fox jumps over the lazy dog")

			ct, err := crypto.Seal(algo, key, iv, aad, pt)
			require.NoError(t, err)

			got, err := crypto.Open(algo, key, iv, aad, ct)
			require.NoError(t, err)
			require.Equal(t, pt, got)
		})
	}
}

func TestOpenDetectsTamper(t *testing.T) {
	key, err := crypto.RandomBytes(crypto.KeySize)
	require.NoError(t, err)
	iv, err := crypto.RandomBytes(12)
	require.NoError(t, err)
	aad := []byte("aad")
	pt := []byte("hello world")

	ct, err := crypto.Seal(crypto.AlgoAES256GCM, key, iv, aad, pt)
	require.NoError(t, err)

	t.Run("flipped ciphertext byte", func(t *testing.T) {
		tampered := append([]byte(nil), ct...)
		tampered[0] ^= 0x01
		_, err := crypto.Open(crypto.AlgoAES256GCM, key, iv, aad, tampered)
		require.ErrorIs(t, err, crypto.ErrAuth)
	})

	t.Run("flipped tag byte", func(t *testing.T) {
		tampered := append([]byte(nil), ct...)
		tampered[len(tampered)-1] ^= 0x01
		_, err := crypto.Open(crypto.AlgoAES256GCM, key, iv, aad, tampered)
		require.ErrorIs(t, err, crypto.ErrAuth)
	})

	t.Run("flipped iv byte", func(t *testing.T) {
		tamperedIV := append([]byte(nil), iv...)
		tamperedIV[0] ^= 0x01
		_, err := crypto.Open(crypto.AlgoAES256GCM, key, tamperedIV, aad, ct)
		require.ErrorIs(t, err, crypto.ErrAuth)
	})

	t.Run("flipped aad byte", func(t *testing.T) {
		tamperedAAD := append([]byte(nil), aad...)
		tamperedAAD[0] ^= 0x01
		_, err := crypto.Open(crypto.AlgoAES256GCM, key, iv, tamperedAAD, ct)
		require.ErrorIs(t, err, crypto.ErrAuth)
	})

	t.Run("wrong key", func(t *testing.T) {
		otherKey, err := crypto.RandomBytes(crypto.KeySize)
		require.NoError(t, err)
		_, err = crypto.Open(crypto.AlgoAES256GCM, otherKey, iv, aad, ct)
		require.ErrorIs(t, err, crypto.ErrAuth)
	})

	t.Run("truncated tag", func(t *testing.T) {
		_, err := crypto.Open(crypto.AlgoAES256GCM, key, iv, aad, ct[:len(ct)-20])
		require.Error(t, err)
	})
}

func TestSealRejectsBadKeyLength(t *testing.T) {
	iv, _ := crypto.RandomBytes(12)
	_, err := crypto.Seal(crypto.AlgoAES256GCM, []byte("short"), iv, nil, []byte("x"))
	require.ErrorIs(t, err, crypto.ErrInvalidParam)
}
