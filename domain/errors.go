package domain

import (
	"errors"
	"net/http"
)

// AppError carries an HTTP status code alongside the message so the single
// error-handling seam in the HTTP layer can map service failures without
// string matching.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(message string, code int) *AppError {
	return &AppError{Code: code, Message: message}
}

func ErrValidation(message string) *AppError {
	return NewAppError(message, http.StatusBadRequest)
}

func ErrUnauthorized(message string) *AppError {
	return NewAppError(message, http.StatusUnauthorized)
}

func ErrForbidden(message string) *AppError {
	return NewAppError(message, http.StatusForbidden)
}

func ErrNotFound(message string) *AppError {
	return NewAppError(message, http.StatusNotFound)
}

// AsAppError unwraps err to an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
