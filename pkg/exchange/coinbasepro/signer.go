package coinbasepro

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"ledger/pkg/core"
)

// Signer produces CB-ACCESS-* headers.
type Signer struct {
	creds *core.Credentials
	clock core.Clock
}

// NewSigner signs with creds, stamping requests with clock.
func NewSigner(creds *core.Credentials, clock core.Clock) *Signer {
	if clock == nil {
		clock = core.SystemClock
	}
	return &Signer{creds: creds, clock: clock}
}

// Sign implements core.Signer.
func (s *Signer) Sign(req *core.Request) (map[string]string, error) {
	if s.creds == nil || s.creds.APIKey == "" || s.creds.SecretKey == "" {
		return nil, core.NewCredentialsError(Name)
	}
	secret, err := base64.StdEncoding.DecodeString(s.creds.SecretKey)
	if err != nil {
		return nil, core.NewSigningError(Name, fmt.Errorf("decode secret: %w", err))
	}

	timestamp := Timestamp(s.clock())
	return map[string]string{
		"CB-ACCESS-KEY":        s.creds.APIKey,
		"CB-ACCESS-SIGN":       Signature(secret, timestamp, req.Method, req.RequestPath(), req.Payload),
		"CB-ACCESS-TIMESTAMP":  timestamp,
		"CB-ACCESS-PASSPHRASE": s.creds.Passphrase,
	}, nil
}

// Signature returns base64(HMAC-SHA256(secret, timestamp+method+path+body)).
func Signature(secret []byte, timestamp, method, requestPath string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp + method + requestPath))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Timestamp renders t as unix seconds with a fractional part.
func Timestamp(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', -1, 64)
}
