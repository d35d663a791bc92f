package filecodec_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
	"github.com/jaydenbeard/silentrelay-crypto/internal/filecodec"
)

// TestFileRoundTripFS1 mirrors spec.md scenario FS1: a 12-byte plaintext
// encrypted then decrypted with an all-zero key should round-trip exactly,
// with header.fileSize == 12 and header.encryptedSize == 12+16.
func TestFileRoundTripFS1(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "plain.txt")
	encPath := filepath.Join(dir, "plain.enc")
	outPath := filepath.Join(dir, "plain.out")

	plaintext := []byte("hello world\n")
	require.NoError(t, os.WriteFile(inPath, plaintext, 0o600))

	key := make([]byte, crypto.KeySize)
	ctx, err := filecodec.NewContext(crypto.AlgoAES256GCM, key)
	require.NoError(t, err)

	require.NoError(t, filecodec.EncryptFile(inPath, encPath, ctx))

	encBytes, err := os.ReadFile(encPath)
	require.NoError(t, err)
	require.Len(t, encBytes, filecodec.HeaderSize+len(plaintext)+crypto.TagSize)

	var header filecodec.Header
	require.NoError(t, header.UnmarshalBinary(encBytes[:filecodec.HeaderSize]))
	require.EqualValues(t, 12, header.FileSize)
	require.EqualValues(t, 12+16, header.EncryptedSize)

	decryptCtx, err := filecodec.NewContext(crypto.AlgoAES256GCM, key)
	require.NoError(t, err)
	require.NoError(t, filecodec.DecryptFile(encPath, outPath, decryptCtx))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

// TestFileTamperFS2 mirrors scenario FS2: flipping the last byte of the
// tag region must make decryption fail with ErrAuth.
func TestFileTamperFS2(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "plain.txt")
	encPath := filepath.Join(dir, "plain.enc")
	outPath := filepath.Join(dir, "plain.out")

	plaintext := []byte("hello world\n")
	require.NoError(t, os.WriteFile(inPath, plaintext, 0o600))

	key := make([]byte, crypto.KeySize)
	ctx, err := filecodec.NewContext(crypto.AlgoAES256GCM, key)
	require.NoError(t, err)
	require.NoError(t, filecodec.EncryptFile(inPath, encPath, ctx))

	encBytes, err := os.ReadFile(encPath)
	require.NoError(t, err)
	encBytes[len(encBytes)-1] ^= 0x01
	require.NoError(t, os.WriteFile(encPath, encBytes, 0o600))

	decryptCtx, err := filecodec.NewContext(crypto.AlgoAES256GCM, key)
	require.NoError(t, err)
	err = filecodec.DecryptFile(encPath, outPath, decryptCtx)
	require.ErrorIs(t, err, filecodec.ErrAuth)
}

func TestFileRoundTripEmptyFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "empty.txt")
	encPath := filepath.Join(dir, "empty.enc")
	outPath := filepath.Join(dir, "empty.out")

	require.NoError(t, os.WriteFile(inPath, nil, 0o600))

	key, err := crypto.RandomBytes(crypto.KeySize)
	require.NoError(t, err)
	ctx, err := filecodec.NewContext(crypto.AlgoAES256GCM, key)
	require.NoError(t, err)
	require.NoError(t, filecodec.EncryptFile(inPath, encPath, ctx))

	decryptCtx, err := filecodec.NewContext(crypto.AlgoAES256GCM, key)
	require.NoError(t, err)
	require.NoError(t, filecodec.DecryptFile(encPath, outPath, decryptCtx))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFileRoundTripNonBlockMultipleSize(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "odd.bin")
	encPath := filepath.Join(dir, "odd.enc")
	outPath := filepath.Join(dir, "odd.out")

	plaintext := make([]byte, 12345) // not a multiple of 16
	for i := range plaintext {
		plaintext[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(inPath, plaintext, 0o600))

	key, err := crypto.RandomBytes(crypto.KeySize)
	require.NoError(t, err)
	ctx, err := filecodec.NewContext(crypto.AlgoChaCha20Poly1305, key)
	require.NoError(t, err)
	require.NoError(t, filecodec.EncryptFile(inPath, encPath, ctx))

	decryptCtx, err := filecodec.NewContext(crypto.AlgoChaCha20Poly1305, key)
	require.NoError(t, err)
	require.NoError(t, filecodec.DecryptFile(encPath, outPath, decryptCtx))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}
