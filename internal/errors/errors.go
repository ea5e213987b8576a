// Package errors provides typed errors for the folio tracker.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common error cases.
var (
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates a validation error.
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates a resource conflict (e.g. a fetch already running).
	ErrConflict = errors.New("resource conflict")

	// ErrInternal indicates an internal server error.
	ErrInternal = errors.New("internal error")

	// ErrForbidden indicates the action is not allowed, e.g. in demo mode.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimit indicates too many requests.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrUpstream indicates the finance API failed or sent an unusable reply.
	ErrUpstream = errors.New("upstream error")

	// ErrCanceled indicates a fetch batch was stopped before it completed.
	ErrCanceled = errors.New("fetch canceled")
)

// AppError is a structured application error.
type AppError struct {
	// Type is the error type (sentinel error).
	Type error
	// Message is the user-facing error message.
	Message string
	// Details contains additional error details.
	Details map[string]any
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the error type and the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Type}
	}
	return []error{e.Type, e.Cause}
}

// Is checks if this error matches the target.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Type, target)
}

// New creates a new AppError.
func New(errType error, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(errType error, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// WithDetails adds details to an AppError.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// NotFound creates a not found error.
func NotFound(resource string) *AppError {
	return &AppError{
		Type:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// Validation creates a validation error.
func Validation(message string) *AppError {
	return &AppError{
		Type:    ErrValidation,
		Message: message,
	}
}

// ValidationField creates a validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Type:    ErrValidation,
		Message: message,
		Details: map[string]any{"field": field},
	}
}

// Conflict creates a conflict error.
func Conflict(message string) *AppError {
	return &AppError{
		Type:    ErrConflict,
		Message: message,
	}
}

// Internal creates an internal error.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrInternal,
		Message: message,
		Cause:   cause,
	}
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *AppError {
	return &AppError{
		Type:    ErrForbidden,
		Message: message,
	}
}

// Upstream creates an error for a failed finance API call.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrUpstream,
		Message: message,
		Cause:   cause,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsCanceled checks if an error reports a stopped fetch.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Message returns the user-facing message of an AppError, or a generic
// message for any other error so internals are not leaked.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrCanceled):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
