package kraken

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
	"ledger/pkg/exchange"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...func(*core.Config)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := core.DefaultConfig(Name).
		WithBaseURL(server.URL).
		WithDelay(0).
		WithTimeout(time.Second).
		WithCredentials(&core.Credentials{APIKey: "key", SecretKey: vectorSecret})
	for _, opt := range opts {
		opt(config)
	}

	client, err := New(config, exchange.WithNonce(NewNonceSource(core.FixedClock(time.UnixMilli(1616492376594))).Next))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
