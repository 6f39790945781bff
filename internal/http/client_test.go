package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
)

func newTestClient(t *testing.T, serverURL string, mutate ...func(*Config)) *Client {
	t.Helper()
	config := &Config{
		Exchange:  "test",
		BaseURL:   serverURL,
		Timeout:   time.Second,
		UserAgent: core.DefaultUserAgent,
	}
	for _, m := range mutate {
		m(config)
	}
	client, err := NewClient(config, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{Exchange: "test", BaseURL: "::", Timeout: time.Second}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewClient(&Config{BaseURL: "http://localhost", Timeout: time.Second}, zerolog.Nop())
	assert.Error(t, err)
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "BTC-USD", r.URL.Query().Get("product_id"))
		assert.Equal(t, core.DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("CB-AFTER", "42")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"id":"BTC-USD"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	page, err := client.Get(context.Background(), "/products", url.Values{"product_id": {"BTC-USD"}}, nil)

	require.NoError(t, err)
	assert.True(t, page.OK())
	assert.Equal(t, "42", page.Header.Get("CB-AFTER"))
	assert.JSONEq(t, `[{"id":"BTC-USD"}]`, string(page.Body))
}

func TestClient_PostJSONSignsSentBytes(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received, _ = io.ReadAll(r.Body)
		assert.Equal(t, string(received), r.Header.Get("X-Signed-Body"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	signer := core.SignerFunc(func(req *core.Request) (map[string]string, error) {
		return map[string]string{"X-Signed-Body": string(req.Payload)}, nil
	})

	page, err := client.Post(context.Background(), "/orders", map[string]string{"side": "buy"}, signer)

	require.NoError(t, err)
	assert.True(t, page.OK())
	assert.JSONEq(t, `{"side":"buy"}`, string(received))
}

func TestClient_PostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1700000000000", r.PostForm.Get("nonce"))
		assert.Equal(t, "50", r.PostForm.Get("ofs"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error":[],"result":{}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	body := url.Values{"nonce": {"1700000000000"}, "ofs": {"50"}}

	page, err := client.Post(context.Background(), "/0/private/Ledgers", body, nil)

	require.NoError(t, err)
	assert.Equal(t, 200, page.StatusCode)
}

func TestClient_PutAndDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			assert.Equal(t, "/orders/1", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			assert.Equal(t, "/orders/1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	page, err := client.Put(context.Background(), "/orders/1", map[string]string{"size": "1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 200, page.StatusCode)

	page, err = client.Delete(context.Background(), "/orders/1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 204, page.StatusCode)
}

func TestClient_ErrorStatusIsPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid signature"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	page, err := client.Get(context.Background(), "/accounts", nil, nil)

	require.NoError(t, err)
	assert.False(t, page.OK())
	assert.Equal(t, 401, page.StatusCode)
	assert.JSONEq(t, `{"message":"invalid signature"}`, string(page.Body))
}

func TestClient_SignerError(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	want := errors.New("bad secret")
	signer := core.SignerFunc(func(*core.Request) (map[string]string, error) { return nil, want })

	_, err := client.Get(context.Background(), "/accounts", nil, signer)

	assert.ErrorIs(t, err, want)
	assert.False(t, called)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *Config) { c.Timeout = 20 * time.Millisecond })

	_, err := client.Get(context.Background(), "/slow", nil, nil)

	require.Error(t, err)
	assert.True(t, core.IsTimeoutError(err), err.Error())
	assert.False(t, core.IsUpstreamError(err))
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(t, serverURL)

	_, err := client.Get(context.Background(), "/products", nil, nil)

	require.Error(t, err)
	assert.True(t, core.IsNetworkError(err), err.Error())
}

func TestClient_Throttle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *Config) { c.Delay = 30 * time.Millisecond })

	start := time.Now()
	for range 3 {
		_, err := client.Get(context.Background(), "/time", nil, nil)
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, int64(3), client.Throttle().Metrics().AllowedRequests)
}

func TestClient_Close(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.Get(context.Background(), "/products", nil, nil)
	assert.ErrorIs(t, err, core.ErrClientClosed)
}
