package session

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKDFCKDeterministic(t *testing.T) {
	var ck [keyLen]byte
	for i := range ck {
		ck[i] = byte(i)
	}

	mk1, next1, err := kdfCK(ck)
	require.NoError(t, err)
	mk2, next2, err := kdfCK(ck)
	require.NoError(t, err)

	require.Equal(t, mk1, mk2)
	require.Equal(t, next1, next2)
	require.False(t, bytes.Equal(mk1[:], next1[:]), "message key and next chain key must differ")
}

func TestKDFCKChangesWithInput(t *testing.T) {
	var ckA, ckB [keyLen]byte
	ckB[0] = 1

	mkA, _, err := kdfCK(ckA)
	require.NoError(t, err)
	mkB, _, err := kdfCK(ckB)
	require.NoError(t, err)

	require.NotEqual(t, mkA, mkB)
}

func TestKDFRKDeterministic(t *testing.T) {
	var rk [keyLen]byte
	dh := []byte("shared secret material")

	root1, chain1, err := kdfRK(rk, dh)
	require.NoError(t, err)
	root2, chain2, err := kdfRK(rk, dh)
	require.NoError(t, err)

	require.Equal(t, root1, root2)
	require.Equal(t, chain1, chain2)
}

func TestKDFRKChangesWithDH(t *testing.T) {
	var rk [keyLen]byte

	root1, _, err := kdfRK(rk, []byte("dh-a"))
	require.NoError(t, err)
	root2, _, err := kdfRK(rk, []byte("dh-b"))
	require.NoError(t, err)

	require.NotEqual(t, root1, root2)
}
