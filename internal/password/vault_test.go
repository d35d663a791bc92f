package password_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaydenbeard/silentrelay-crypto/internal/password"
)

// fakeVault serves the minimal KV-v2 response shape VaultPepperStore
// expects, so the test exercises the HTTP round trip without a live
// Vault server.
func fakeVault(t *testing.T, pepper []byte) *httptest.Server {
	t.Helper()
	encoded := base64.StdEncoding.EncodeToString(pepper)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"data": map[string]any{
				"data": map[string]any{
					"pepper": encoded,
				},
				"metadata": map[string]any{},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
}

func TestVaultPepperStoreReadsSecret(t *testing.T) {
	want := make([]byte, 32)
	for i := range want {
		want[i] = byte(i)
	}

	srv := fakeVault(t, want)
	defer srv.Close()

	store, err := password.NewVaultPepperStore(srv.URL, "test-token", "secret", "silentrelay/pepper", "pepper")
	require.NoError(t, err)

	got, err := store.Pepper()
	require.NoError(t, err)
	require.Equal(t, want, got)
}
