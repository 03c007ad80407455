package apperrors

import "fmt"

// AppError wraps an infrastructure failure with a code and message so the
// transport layer can map it without inspecting the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError wrapping the given error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped error for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}
