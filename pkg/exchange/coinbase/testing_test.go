package coinbase

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
	"ledger/pkg/exchange"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := core.DefaultConfig(Name).
		WithBaseURL(server.URL).
		WithDelay(0).
		WithTimeout(time.Second).
		WithCredentials(&core.Credentials{APIKey: "key", SecretKey: "raw-secret"})

	client, err := New(config, exchange.WithClock(core.FixedClock(time.Unix(1700000000, 0))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

const accountsBody = `{"pagination":{"next_starting_after":null},"data":[
	{"id":"wallet-btc","currency":{"code":"BTC","name":"Bitcoin"},"balance":{"amount":"0.25","currency":"BTC"}},
	{"id":"wallet-eth","currency":"ETH","balance":{"amount":"0.00","currency":"ETH"}}
]}`
