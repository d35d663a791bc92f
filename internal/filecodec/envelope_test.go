package filecodec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
	"github.com/jaydenbeard/silentrelay-crypto/internal/filecodec"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := crypto.RandomBytes(crypto.KeySize)
	require.NoError(t, err)
	return key
}

func TestEncryptOneDecryptOneRoundTrip(t *testing.T) {
	ctx, err := filecodec.NewContext(crypto.AlgoAES256GCM, testKey(t))
	require.NoError(t, err)

	plaintext := []byte("hello world\n")
	envelope, err := filecodec.EncryptOne(ctx, plaintext)
	require.NoError(t, err)
	require.NotEmpty(t, ctx.IV)
	require.Len(t, ctx.Tag, crypto.TagSize)

	decryptCtx, err := filecodec.NewContext(crypto.AlgoAES256GCM, ctx.Key)
	require.NoError(t, err)
	got, err := filecodec.DecryptOne(decryptCtx, envelope)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestEncryptOneFreshIVPerCall(t *testing.T) {
	ctx, err := filecodec.NewContext(crypto.AlgoAES256GCM, testKey(t))
	require.NoError(t, err)

	e1, err := filecodec.EncryptOne(ctx, []byte("same plaintext"))
	require.NoError(t, err)
	iv1 := append([]byte(nil), ctx.IV...)

	e2, err := filecodec.EncryptOne(ctx, []byte("same plaintext"))
	require.NoError(t, err)

	require.NotEqual(t, iv1, ctx.IV)
	require.NotEqual(t, e1, e2)
}

func TestDecryptOneRejectsShortEnvelope(t *testing.T) {
	ctx, err := filecodec.NewContext(crypto.AlgoAES256GCM, testKey(t))
	require.NoError(t, err)
	_, err = filecodec.DecryptOne(ctx, []byte("short"))
	require.ErrorIs(t, err, filecodec.ErrInvalidParam)
}

func TestDecryptOneRejectsTamperedTag(t *testing.T) {
	key := testKey(t)
	ctx, err := filecodec.NewContext(crypto.AlgoAES256GCM, key)
	require.NoError(t, err)
	envelope, err := filecodec.EncryptOne(ctx, []byte("data"))
	require.NoError(t, err)

	tampered := append([]byte(nil), envelope...)
	tampered[len(tampered)-1] ^= 0x01

	decryptCtx, err := filecodec.NewContext(crypto.AlgoAES256GCM, key)
	require.NoError(t, err)
	_, err = filecodec.DecryptOne(decryptCtx, tampered)
	require.ErrorIs(t, err, filecodec.ErrAuth)
}
