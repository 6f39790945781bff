package main

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
)

func TestPrinterReport(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		var buf bytes.Buffer
		p := newPrinter(&buf, aurora.NewAurora(false))

		err := p.Report([]core.Account{{Name: "BTC", Balance: "0.5"}}, nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"name": "BTC"`)
	})

	t.Run("upstream payload", func(t *testing.T) {
		var buf bytes.Buffer
		p := newPrinter(&buf, aurora.NewAurora(false))
		page := &core.Page{StatusCode: http.StatusUnauthorized, Body: []byte(`{"message":"invalid signature"}`)}
		upstream := core.NewUpstreamError(core.ExchangeCoinbasePro, page, core.ErrorTypeAuthentication, "invalid signature")

		err := p.Report((*core.Price)(nil), upstream)
		require.Error(t, err)
		assert.ErrorIs(t, err, errReported)
		assert.Equal(t, `{"message":"invalid signature"}`+"\n", buf.String())
	})

	t.Run("partial records then payload", func(t *testing.T) {
		var buf bytes.Buffer
		p := newPrinter(&buf, aurora.NewAurora(false))
		page := &core.Page{StatusCode: http.StatusTooManyRequests, Body: []byte(`{"message":"slow down"}`)}
		upstream := core.NewUpstreamError(core.ExchangeCoinbasePro, page, core.ErrorTypeRateLimit, "slow down")

		err := p.Report([]core.Fill{{ID: "BTC-USD", Side: "buy"}}, upstream)
		assert.ErrorIs(t, err, errReported)
		assert.Contains(t, buf.String(), `"id": "BTC-USD"`)
		assert.Contains(t, buf.String(), `{"message":"slow down"}`)
	})

	t.Run("local error passes through", func(t *testing.T) {
		var buf bytes.Buffer
		p := newPrinter(&buf, aurora.NewAurora(false))
		local := errors.New("dial tcp: refused")

		err := p.Report(nil, local)
		assert.Same(t, local, err)
		assert.Empty(t, buf.String())
	})
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug", "", true)
	require.NoError(t, err)

	_, err = newLogger("loud", "", true)
	assert.Error(t, err)
}
