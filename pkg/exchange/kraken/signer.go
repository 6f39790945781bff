package kraken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"ledger/pkg/core"
)

// Signer produces API-Key and API-Sign headers and stamps private request
// bodies with a nonce.
type Signer struct {
	creds *core.Credentials
	nonce func() int64
}

// NewSigner signs with creds. nonce is called once per stamped form.
func NewSigner(creds *core.Credentials, nonce func() int64) *Signer {
	if nonce == nil {
		nonce = NewNonceSource(nil).Next
	}
	return &Signer{creds: creds, nonce: nonce}
}

// Stamp returns a copy of form with a fresh nonce set.
func (s *Signer) Stamp(form url.Values) url.Values {
	out := make(url.Values, len(form)+1)
	for k, v := range form {
		out[k] = append([]string(nil), v...)
	}
	out.Set("nonce", strconv.FormatInt(s.nonce(), 10))
	return out
}

// Sign implements core.Signer. The nonce is read back from the encoded
// body so the signature covers exactly the bytes sent.
func (s *Signer) Sign(req *core.Request) (map[string]string, error) {
	if s.creds == nil || s.creds.APIKey == "" || s.creds.SecretKey == "" {
		return nil, core.NewCredentialsError(Name)
	}
	secret, err := base64.StdEncoding.DecodeString(s.creds.SecretKey)
	if err != nil {
		return nil, core.NewSigningError(Name, fmt.Errorf("decode secret: %w", err))
	}
	form, err := url.ParseQuery(string(req.Payload))
	if err != nil {
		return nil, core.NewSigningError(Name, fmt.Errorf("parse body: %w", err))
	}
	nonce := form.Get("nonce")
	if nonce == "" {
		return nil, core.NewSigningError(Name, errors.New("body has no nonce"))
	}

	return map[string]string{
		"API-Key":  s.creds.APIKey,
		"API-Sign": Signature(secret, req.Path, nonce, req.Payload),
	}, nil
}

// Signature returns base64(HMAC-SHA512(secret, path + SHA256(nonce + body))).
func Signature(secret []byte, path, nonce string, body []byte) string {
	sha := sha256.New()
	sha.Write([]byte(nonce))
	sha.Write(body)

	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(sha.Sum(nil))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
