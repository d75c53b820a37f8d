package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Rate lookup failures. Each is surfaced to callers as a structured result.
var (
	ErrFutureDate          = errors.New("valuation date is in the future")
	ErrUnknownCurrency     = errors.New("unknown currency")
	ErrNoProviderAvailable = errors.New("no exchange rate provider available")
	ErrNoFallbackAvailable = errors.New("no fallback exchange rate provider available")
	// ErrProviderTransport covers network failures and 5xx answers. Retried locally.
	ErrProviderTransport = errors.New("provider transport error")
	// ErrProviderResponse covers 4xx answers and bodies that cannot be decoded. Not retried.
	ErrProviderResponse  = errors.New("provider returned an invalid response")
	ErrProviderRejected  = errors.New("provider rejected by circuit breaker")
	ErrRemoteDataMissing = errors.New("provider has no rate for the requested pair and date")
	ErrTimeout           = errors.New("provider call timed out")
)

// AppError carries an HTTP-oriented status code and a client-safe message
// alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError with an explicit status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationError wraps ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewRateError wraps one of the rate lookup sentinels and picks the status
// code the HTTP layer renders for it.
func NewRateError(kind error, message string) *AppError {
	return &AppError{Code: StatusFor(kind), Message: message, Err: kind}
}

// StatusFor maps a sentinel (or an error wrapping one) to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrFutureDate), errors.Is(err, ErrUnknownCurrency), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRemoteDataMissing):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNoProviderAvailable),
		errors.Is(err, ErrNoFallbackAvailable),
		errors.Is(err, ErrProviderRejected),
		errors.Is(err, ErrProviderTransport),
		errors.Is(err, ErrProviderResponse):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
