package apperror

import "net/http"

// AppError carries the HTTP status and user-facing message for a failure.
type AppError struct {
	Code    int    // HTTP status code
	Message string // user-facing message
	Err     error  // underlying cause, never exposed
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError around an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// BadRequest is shorthand for a 400 wrapping err.
func BadRequest(err error) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: err.Error(), Err: err}
}
