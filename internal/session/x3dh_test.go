package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaydenbeard/silentrelay-crypto/internal/identity"
)

func setupParticipant(t *testing.T, oneTimeKeys int) (*identity.KeyPair, *identity.PreKeyStore) {
	t.Helper()
	keys, err := identity.GenerateIdentity()
	require.NoError(t, err)
	store := identity.NewPreKeyStore(keys, 1, 1)
	require.NoError(t, store.RotateSignedPreKey())
	if oneTimeKeys > 0 {
		_, err := store.GenerateOneTimePreKeys(oneTimeKeys)
		require.NoError(t, err)
	}
	return keys, store
}

func TestHandshakeDerivesMatchingSessionWithOneTimeKey(t *testing.T) {
	aliceKeys, _ := setupParticipant(t, 0)
	bobKeys, bobStore := setupParticipant(t, 1)

	bobBundle, err := bobStore.Bundle(true)
	require.NoError(t, err)
	require.True(t, bobBundle.HasOneTimePreKey())

	usedOTK, ok := bobStore.TakeReservedPreKey(bobBundle.PreKeyID)
	require.True(t, ok)

	aliceSession, ephemeralPub, err := InitSession(aliceKeys, "bob", bobBundle)
	require.NoError(t, err)

	bobSession, err := CompleteHandshake(bobKeys, bobStore.Signed, usedOTK, "alice", aliceKeys.Public(), ephemeralPub)
	require.NoError(t, err)

	require.Equal(t, aliceSession.RootKey, bobSession.RootKey)
	require.Equal(t, aliceSession.ChainKeySend, bobSession.ChainKeyReceive)
}

func TestHandshakeDerivesMatchingSessionWithoutOneTimeKey(t *testing.T) {
	aliceKeys, _ := setupParticipant(t, 0)
	bobKeys, bobStore := setupParticipant(t, 0)

	bobBundle, err := bobStore.Bundle(true)
	require.NoError(t, err)
	require.False(t, bobBundle.HasOneTimePreKey())

	aliceSession, ephemeralPub, err := InitSession(aliceKeys, "bob", bobBundle)
	require.NoError(t, err)

	bobSession, err := CompleteHandshake(bobKeys, bobStore.Signed, nil, "alice", aliceKeys.Public(), ephemeralPub)
	require.NoError(t, err)

	require.Equal(t, aliceSession.RootKey, bobSession.RootKey)
}

func TestInitSessionRejectsTamperedSignature(t *testing.T) {
	aliceKeys, _ := setupParticipant(t, 0)
	_, bobStore := setupParticipant(t, 0)

	bundle, err := bobStore.Bundle(false)
	require.NoError(t, err)
	bundle.SignedPreKey[0] ^= 0x01

	_, _, err = InitSession(aliceKeys, "bob", bundle)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestInitSessionRejectsMalformedKey(t *testing.T) {
	aliceKeys, _ := setupParticipant(t, 0)
	_, bobStore := setupParticipant(t, 0)

	bundle, err := bobStore.Bundle(false)
	require.NoError(t, err)
	bundle.IdentityKey = []byte{0x01, 0x02}

	_, _, err = InitSession(aliceKeys, "bob", bundle)
	require.Error(t, err)
}

func TestNewSessionIsActive(t *testing.T) {
	aliceKeys, _ := setupParticipant(t, 0)
	_, bobStore := setupParticipant(t, 0)
	bundle, err := bobStore.Bundle(false)
	require.NoError(t, err)

	s, _, err := InitSession(aliceKeys, "bob", bundle)
	require.NoError(t, err)
	require.Equal(t, Active, s.State())
}
