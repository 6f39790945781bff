package coinbase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"ledger/pkg/core"
)

// Signer produces CB-ACCESS-* and CB-VERSION headers.
type Signer struct {
	creds   *core.Credentials
	clock   core.Clock
	version string
}

// NewSigner signs with creds and sends version as CB-VERSION. An empty
// version selects the default.
func NewSigner(creds *core.Credentials, clock core.Clock, version string) *Signer {
	if clock == nil {
		clock = core.SystemClock
	}
	if version == "" {
		version = core.CoinbaseAPIVersion
	}
	return &Signer{creds: creds, clock: clock, version: version}
}

// Sign implements core.Signer.
func (s *Signer) Sign(req *core.Request) (map[string]string, error) {
	if s.creds == nil || s.creds.APIKey == "" || s.creds.SecretKey == "" {
		return nil, core.NewCredentialsError(Name)
	}
	timestamp := Timestamp(s.clock())
	return map[string]string{
		"CB-ACCESS-KEY":       s.creds.APIKey,
		"CB-ACCESS-SIGN":      Signature([]byte(s.creds.SecretKey), timestamp, req.Method, req.RequestPath(), req.Payload),
		"CB-ACCESS-TIMESTAMP": timestamp,
		"CB-VERSION":          s.version,
	}, nil
}

// Signature returns hex(HMAC-SHA256(secret, timestamp+method+path+body)).
func Signature(secret []byte, timestamp, method, requestPath string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp + method + requestPath))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Timestamp renders t as whole unix seconds.
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
