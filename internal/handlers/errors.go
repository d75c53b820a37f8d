package handlers

import (
	"errors"

	"github.com/SscSPs/mycurrency/internal/apperrors"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusAndMessage picks the HTTP status and a client-safe message for err.
// Messages of *apperrors.AppError are safe to show; anything else gets fallback.
func statusAndMessage(err error, fallback string) (int, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code := appErr.Code
		if code == 0 {
			code = apperrors.StatusFor(err)
		}
		return code, appErr.Message
	}
	return apperrors.StatusFor(err), fallback
}
