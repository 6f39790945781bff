package coinbase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
)

func TestSignature_Hex(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("raw-secret"))
	mac.Write([]byte("1700000000GET/v2/accounts?limit=100"))
	want := hex.EncodeToString(mac.Sum(nil))

	got := Signature([]byte("raw-secret"), "1700000000", http.MethodGet, "/v2/accounts?limit=100", nil)

	assert.Equal(t, want, got)
	assert.Len(t, got, 64)
}

func TestSigner_Sign(t *testing.T) {
	signer := NewSigner(&core.Credentials{APIKey: "key", SecretKey: "raw-secret"}, core.FixedClock(time.Unix(1700000000, 900_000_000)), "")
	req := core.NewRequest(http.MethodPost, "/v2/accounts/abc/buys")
	req.Payload = []byte(`{"amount":"1"}`)

	headers, err := signer.Sign(req)

	require.NoError(t, err)
	assert.Equal(t, "key", headers["CB-ACCESS-KEY"])
	assert.Equal(t, "1700000000", headers["CB-ACCESS-TIMESTAMP"])
	assert.Equal(t, core.CoinbaseAPIVersion, headers["CB-VERSION"])
	assert.Equal(t,
		Signature([]byte("raw-secret"), "1700000000", "POST", "/v2/accounts/abc/buys", []byte(`{"amount":"1"}`)),
		headers["CB-ACCESS-SIGN"])
}

func TestSigner_Version(t *testing.T) {
	signer := NewSigner(&core.Credentials{APIKey: "key", SecretKey: "s"}, nil, "2017-08-07")

	headers, err := signer.Sign(core.NewRequest(http.MethodGet, "/v2/user"))

	require.NoError(t, err)
	assert.Equal(t, "2017-08-07", headers["CB-VERSION"])
}

func TestSigner_NoCredentials(t *testing.T) {
	_, err := NewSigner(&core.Credentials{APIKey: "key"}, nil, "").Sign(core.NewRequest(http.MethodGet, "/v2/user"))

	assert.True(t, core.IsErrorCode(err, core.ErrCodeNoCredentials))
}
