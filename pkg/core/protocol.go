package core

import (
	"fmt"
	"time"
)

// Signer computes the authentication headers for a request. Sign is
// called by the transport after the body has been encoded into
// req.Payload, so the signature always covers the bytes on the wire.
type Signer interface {
	Sign(req *Request) (map[string]string, error)
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(req *Request) (map[string]string, error)

func (f SignerFunc) Sign(req *Request) (map[string]string, error) {
	return f(req)
}

// Clock is the timestamp source used by signers.
type Clock func() time.Time

// SystemClock returns the wall clock.
func SystemClock() time.Time { return time.Now() }

// FixedClock returns a Clock stuck at t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func toString(v any) string {
	switch t := v.(type) {
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
