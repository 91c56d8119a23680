// Package apperr defines the error taxonomy returned by the account service.
//
// Each error type knows the HTTP status it is reported with. Handlers render
// them through features/errors; any other error is an internal failure.
package apperr

import (
	"errors"
	"net/http"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

// NewValidationError creates a new validation error.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

// HTTPStatus returns 422 Unprocessable Entity.
func (e *ValidationError) HTTPStatus() int { return http.StatusUnprocessableEntity }

// ConflictError reports an email/phone uniqueness violation.
type ConflictError struct {
	Message string
	Err     error
}

// NewConflictError creates a new conflict error wrapping cause (may be nil).
func NewConflictError(message string, cause error) *ConflictError {
	return &ConflictError{Message: message, Err: cause}
}

func (e *ConflictError) Error() string { return e.Message }

// Unwrap returns the wrapped error.
func (e *ConflictError) Unwrap() error { return e.Err }

// HTTPStatus returns 400 Bad Request.
func (e *ConflictError) HTTPStatus() int { return http.StatusBadRequest }

// AuthenticationError reports an unknown email or a wrong password.
// Both share one status; only the message tells them apart.
type AuthenticationError struct {
	Message string
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

func (e *AuthenticationError) Error() string { return e.Message }

// HTTPStatus returns 401 Unauthorized.
func (e *AuthenticationError) HTTPStatus() int { return http.StatusUnauthorized }

// UpstreamError reports a failed call to the notifier when its reply is required.
type UpstreamError struct {
	Message string
	Err     error
}

// NewUpstreamError creates a new upstream error wrapping cause.
func NewUpstreamError(message string, cause error) *UpstreamError {
	return &UpstreamError{Message: message, Err: cause}
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus returns 500 Internal Server Error.
func (e *UpstreamError) HTTPStatus() int { return http.StatusInternalServerError }

// HTTPStatuser is implemented by every error in this package.
type HTTPStatuser interface {
	error
	HTTPStatus() int
}

// Status returns the HTTP status for err and whether err belongs to the
// taxonomy. Unknown errors map to 500.
func Status(err error) (int, bool) {
	var hs HTTPStatuser
	if errors.As(err, &hs) {
		return hs.HTTPStatus(), true
	}
	return http.StatusInternalServerError, false
}
