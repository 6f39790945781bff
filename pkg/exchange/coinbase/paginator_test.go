package coinbase

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
)

func TestCursor_Next(t *testing.T) {
	n := NewNormalizer()
	header := &core.Page{StatusCode: 200, Header: http.Header{"Cb-After": {"h1"}}, Body: []byte(`{"pagination":{"next_starting_after":"b1"},"data":[{}]}`)}
	body := &core.Page{StatusCode: 200, Header: http.Header{}, Body: []byte(`{"pagination":{"next_starting_after":"b1"},"data":[{}]}`)}
	last := &core.Page{StatusCode: 200, Header: http.Header{}, Body: []byte(`{"pagination":{"next_starting_after":null},"data":[{}]}`)}
	empty := &core.Page{StatusCode: 200, Header: http.Header{"Cb-After": {"h1"}}, Body: []byte(`{"data":[]}`)}

	start := StartCursor(url.Values{})

	assert.Equal(t, Cursor{StartingAfter: "h1"}, start.Next(header, n), "header wins")
	assert.Equal(t, Cursor{StartingAfter: "b1"}, start.Next(body, n), "falls back to body")
	assert.True(t, start.Next(last, n).Done)
	assert.True(t, start.Next(empty, n).Done)
	assert.True(t, StartCursor(url.Values{"ending_before": {"x"}}).Next(header, n).Done)
}

func TestCursor_Apply(t *testing.T) {
	q := Cursor{StartingAfter: "abc"}.Apply(url.Values{}, 100)

	assert.Equal(t, "abc", q.Get("starting_after"))
	assert.Equal(t, "100", q.Get("limit"))
	assert.Equal(t, "5", Cursor{}.Apply(url.Values{"limit": {"5"}}, 100).Get("limit"))
}

func TestPaginator_BodyCursor(t *testing.T) {
	var seen []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get("starting_after"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		switch r.URL.Query().Get("starting_after") {
		case "":
			writeJSON(w, http.StatusOK, `{"pagination":{"next_starting_after":"a2"},"data":[{"id":"a1","currency":"BTC","balance":{"amount":"1"}}]}`)
		case "a2":
			writeJSON(w, http.StatusOK, `{"pagination":{"next_starting_after":null},"data":[{"id":"a2","currency":"ETH","balance":{"amount":"2"}}]}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("starting_after"))
		}
	}))

	accounts, err := client.Accounts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"", "a2"}, seen)
	assert.Equal(t, []core.Account{{Name: "BTC", Balance: "1"}, {Name: "ETH", Balance: "2"}}, accounts)
}

func TestPaginator_EmptyFirstPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"pagination":{},"data":[]}`)
	}))

	accounts, err := client.Accounts(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
}
