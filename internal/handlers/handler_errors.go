package handlers

import (
	"errors"
	"net/http"

	"github.com/financiera/banking-backend/internal/apperrors"
)

// statusForError maps a service error to the HTTP status the API contract
// promises. The services attach the offending field or amount to the error
// message, so the body can simply carry err.Error().
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrAccountNotActive):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrCannotCancel):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrAllocationExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// isExpectedError reports whether the error is a business-rule outcome
// rather than an infrastructure failure. Expected errors are logged at
// warning level and surface their message to the caller.
func isExpectedError(err error) bool {
	return statusForError(err) != http.StatusInternalServerError
}
