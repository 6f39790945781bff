package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ErrorType represents the category of an exchange error.
type ErrorType int

const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a connection, DNS or I/O failure.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates the upstream throttled the caller.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates rejected, missing or malformed credentials.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates the upstream rejected the request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
	// ErrorTypeInsufficientFunds indicates the account lacks the required balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates exchange rules.
	ErrorTypeInvalidOrder
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	names := [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
	}
	if t < 0 || int(t) >= len(names) {
		return "UNKNOWN"
	}
	return names[t]
}

var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrStreamClosed is returned when attempting to use a closed stream.
	ErrStreamClosed = errors.New("stream is closed")
	// ErrNotConnected is returned when the websocket is not connected.
	ErrNotConnected = errors.New("websocket not connected")
	// ErrNoCredentials is returned when a private call has no credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrUnsupportedExchange is returned by the factory for unknown exchange names.
	ErrUnsupportedExchange = errors.New("unsupported exchange")
)

// ExchangeError is the error value returned for upstream business errors,
// transport failures and signing failures. Upstream business errors keep
// the untouched response body in Raw so callers can branch on its shape.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response, 0 when no
	// response was received.
	StatusCode int `json:"status_code"`
	// Code is the exchange-specific or local error code.
	Code string `json:"code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Raw is the upstream payload, nil for local failures.
	Raw []byte `json:"raw,omitempty"`
	// Exchange identifies which exchange produced this error.
	Exchange string `json:"exchange"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`

	cause error
}

// Error returns a formatted string with exchange name, error type, status code, and message.
func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (%d/%s): %s",
			e.Exchange, e.Type, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (%d): %s",
		e.Exchange, e.Type, e.StatusCode, e.Message)
}

func (e *ExchangeError) Unwrap() error {
	return e.cause
}

// WithCode sets the error code and returns the error for chaining.
func (e *ExchangeError) WithCode(code ErrorCode) *ExchangeError {
	e.Code = string(code)
	return e
}

// WithCause records the underlying error.
func (e *ExchangeError) WithCause(err error) *ExchangeError {
	e.cause = err
	return e
}

// NewExchangeError creates a new ExchangeError with the specified details.
func NewExchangeError(exchange string, errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// NewUpstreamError wraps a non-OK page. Message is the upstream's own
// message when the normalizer could extract one.
func NewUpstreamError(exchange string, page *Page, errorType ErrorType, message string) *ExchangeError {
	e := NewExchangeError(exchange, errorType, page.StatusCode, message)
	e.Raw = page.Body
	if e.Raw == nil {
		e.Raw = []byte{}
	}
	if e.Message == "" {
		e.Message = http.StatusText(page.StatusCode)
	}
	return e
}

// NewTransportError classifies a failed round trip.
func NewTransportError(exchange string, err error) *ExchangeError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewExchangeError(exchange, ErrorTypeTimeout, 0, err.Error()).
			WithCode(ErrCodeTimeout).WithCause(err)
	}
	return NewExchangeError(exchange, ErrorTypeNetwork, 0, err.Error()).
		WithCode(ErrCodeNetwork).WithCause(err)
}

// NewSigningError reports credentials that cannot produce a signature.
func NewSigningError(exchange string, err error) *ExchangeError {
	return NewExchangeError(exchange, ErrorTypeAuthentication, 0, err.Error()).
		WithCode(ErrCodeInvalidSecret).WithCause(err)
}

// NewCredentialsError reports a private call made without credentials.
func NewCredentialsError(exchange string) *ExchangeError {
	return NewExchangeError(exchange, ErrorTypeAuthentication, 0, ErrNoCredentials.Error()).
		WithCode(ErrCodeNoCredentials).WithCause(ErrNoCredentials)
}

// ErrorTypeFromStatus maps an HTTP status to an error category.
func ErrorTypeFromStatus(status int) ErrorType {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorTypeAuthentication
	case status == http.StatusNotFound:
		return ErrorTypeNotFound
	case status == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case status >= 500:
		return ErrorTypeServerError
	case status >= 400:
		return ErrorTypeBadRequest
	}
	return ErrorTypeUnknown
}

// AsExchangeError unwraps err into an *ExchangeError.
func AsExchangeError(err error) (*ExchangeError, bool) {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsUpstreamError reports whether err carries an upstream response, as
// opposed to a transport or local failure.
func IsUpstreamError(err error) bool {
	e, ok := AsExchangeError(err)
	return ok && e.Raw != nil
}

// Payload returns the raw upstream error body carried by err.
func Payload(err error) ([]byte, bool) {
	e, ok := AsExchangeError(err)
	if !ok || e.Raw == nil {
		return nil, false
	}
	return e.Raw, true
}

// IsNetworkError returns true if the error is a network connectivity issue.
func IsNetworkError(err error) bool {
	e, ok := AsExchangeError(err)
	return ok && e.Type == ErrorTypeNetwork
}

// IsTimeoutError returns true if the error is a timeout.
func IsTimeoutError(err error) bool {
	e, ok := AsExchangeError(err)
	return ok && e.Type == ErrorTypeTimeout
}

// IsRateLimitError returns true if the error is a rate limit violation.
func IsRateLimitError(err error) bool {
	e, ok := AsExchangeError(err)
	return ok && e.Type == ErrorTypeRateLimit
}

// IsAuthenticationError returns true if the error is an authentication failure.
func IsAuthenticationError(err error) bool {
	e, ok := AsExchangeError(err)
	return ok && e.Type == ErrorTypeAuthentication
}

// NewDecodeError reports a response body that could not be mapped.
func NewDecodeError(exchange string, page *Page, err error) *ExchangeError {
	return NewExchangeError(exchange, ErrorTypeUnknown, page.StatusCode, "decode response: "+err.Error()).
		WithCode(ErrCodeDecode).WithCause(err)
}
