package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaydenbeard/silentrelay-crypto/internal/identity"
	"github.com/jaydenbeard/silentrelay-crypto/internal/session"
)

// participant bundles together the identity material a single test
// peer needs: its own keys, its prekey store, and a session manager.
type participant struct {
	id      string
	keys    *identity.KeyPair
	store   *identity.PreKeyStore
	manager *session.Manager
}

func newParticipant(t *testing.T, id string, oneTimeKeys int) *participant {
	t.Helper()
	keys, err := identity.GenerateIdentity()
	require.NoError(t, err)

	store := identity.NewPreKeyStore(keys, 1, 1)
	require.NoError(t, store.RotateSignedPreKey())
	if oneTimeKeys > 0 {
		_, err := store.GenerateOneTimePreKeys(oneTimeKeys)
		require.NoError(t, err)
	}

	return &participant{
		id:      id,
		keys:    keys,
		store:   store,
		manager: session.NewManager(nil),
	}
}

// handshake runs the full simulated handshake between initiator and
// responder: initiator fetches responder's bundle, runs InitSession,
// and hands the resulting ephemeral public key to responder's
// CompleteHandshake — the one piece of information a deployed
// transport would carry in the initial message (spec.md §4.4.1).
func handshake(t *testing.T, initiator, responder *participant) {
	t.Helper()

	responderBundle, err := responder.store.Bundle(true)
	require.NoError(t, err)

	var usedOneTime *identity.OneTimePreKey
	if responderBundle.HasOneTimePreKey() {
		var ok bool
		usedOneTime, ok = responder.store.TakeReservedPreKey(responderBundle.PreKeyID)
		require.True(t, ok)
	}

	ephemeralPub, err := initiator.manager.InitSession(initiator.keys, responder.id, responderBundle)
	require.NoError(t, err)

	err = responder.manager.CompleteHandshake(
		responder.keys,
		responder.store.Signed,
		usedOneTime,
		initiator.id,
		initiator.keys.Public(),
		ephemeralPub,
	)
	require.NoError(t, err)
}
