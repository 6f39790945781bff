package kraken

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
)

// Published example from the Kraken REST authentication guide.
const (
	vectorSecret = "kQH5HW/8p1uGOVjbgWA7FunAmGO8lsSUXNsu3eow76sz84Q18fWxnyRzBHCd3pd5nE9qa99HAZtuZuj6F1huXg=="
	vectorNonce  = "1616492376594"
	vectorBody   = "nonce=1616492376594&ordertype=limit&pair=XBTUSD&price=37500&type=buy&volume=1.25"
	vectorSign   = "4/dpxb3iT4tp/ZCVEwSnEsLxx0bqyhLpdfOpc6fn7OR8+UClSV5n9E6aSS8MPtnRfp32bAb0nmbRn6H8ndwLUQ=="
)

func fixedNonce(n int64) func() int64 {
	return func() int64 { return n }
}

func TestSignature_KnownVector(t *testing.T) {
	secret, err := base64.StdEncoding.DecodeString(vectorSecret)
	require.NoError(t, err)

	got := Signature(secret, "/0/private/AddOrder", vectorNonce, []byte(vectorBody))

	assert.Equal(t, vectorSign, got)
}

func TestSigner_SignStampedRequest(t *testing.T) {
	signer := NewSigner(&core.Credentials{APIKey: "key", SecretKey: vectorSecret}, fixedNonce(1616492376594))

	form := signer.Stamp(url.Values{
		"ordertype": {"limit"},
		"pair":      {"XBTUSD"},
		"price":     {"37500"},
		"type":      {"buy"},
		"volume":    {"1.25"},
	})
	req := core.NewRequest(http.MethodPost, "/0/private/AddOrder")
	req.Payload = []byte(form.Encode())

	headers, err := signer.Sign(req)

	require.NoError(t, err)
	assert.Equal(t, vectorBody, string(req.Payload))
	assert.Equal(t, "key", headers["API-Key"])
	assert.Equal(t, vectorSign, headers["API-Sign"])
}

func TestSigner_Stamp(t *testing.T) {
	signer := NewSigner(nil, fixedNonce(42))
	form := url.Values{"asset": {"XXBT"}}

	stamped := signer.Stamp(form)

	assert.Equal(t, "42", stamped.Get("nonce"))
	assert.Equal(t, "XXBT", stamped.Get("asset"))
	assert.False(t, form.Has("nonce"), "input form is unchanged")
	assert.Equal(t, "42", signer.Stamp(nil).Get("nonce"))
}

func TestSigner_Errors(t *testing.T) {
	req := core.NewRequest(http.MethodPost, "/0/private/Balance")
	req.Payload = []byte("nonce=1")

	_, err := NewSigner(nil, nil).Sign(req)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeNoCredentials))

	_, err = NewSigner(&core.Credentials{APIKey: "key", SecretKey: "%%%"}, nil).Sign(req)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeInvalidSecret))

	unstamped := core.NewRequest(http.MethodPost, "/0/private/Balance")
	_, err = NewSigner(&core.Credentials{APIKey: "key", SecretKey: vectorSecret}, nil).Sign(unstamped)
	assert.True(t, core.IsAuthenticationError(err))
}
