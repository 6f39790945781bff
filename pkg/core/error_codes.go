package core

import "errors"

// ErrorCode is a stable, machine-readable identifier attached to an ExchangeError.
type ErrorCode string

const (
	ErrCodeNetwork           ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeRateLimit         ErrorCode = "RATE_LIMIT"
	ErrCodeAuth              ErrorCode = "AUTH_ERROR"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeServerError       ErrorCode = "SERVER_ERROR"
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidOrder      ErrorCode = "INVALID_ORDER"
	ErrCodeInvalidSymbol     ErrorCode = "INVALID_SYMBOL"

	// Credential errors
	ErrCodeNoCredentials ErrorCode = "NO_CREDENTIALS"
	ErrCodeInvalidSecret ErrorCode = "INVALID_SECRET"

	// Response errors
	ErrCodeDecode ErrorCode = "DECODE_ERROR"
)

// IsErrorCode checks if the error matches the specified error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return ErrorCode(exErr.Code) == code
	}
	return false
}
