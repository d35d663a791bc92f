package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryHardDeterministic(t *testing.T) {
	a := memoryHard([]byte("seed"), []byte("salt-value"))
	b := memoryHard([]byte("seed"), []byte("salt-value"))
	require.Equal(t, a, b)
}

func TestMemoryHardChangesWithSalt(t *testing.T) {
	a := memoryHard([]byte("seed"), []byte("salt-one"))
	b := memoryHard([]byte("seed"), []byte("salt-two"))
	require.NotEqual(t, a, b)
}

func TestMemoryHardOutputIsHashSize(t *testing.T) {
	out := memoryHard([]byte("seed"), []byte("salt-value"))
	require.Len(t, out, hashSize)
}
