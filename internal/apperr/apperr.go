// Package apperr defines the engine's error taxonomy. Services resolve
// validation and permission failures at their boundary and return these typed
// errors; storage detail is wrapped and logged, never shown to callers.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a stable, caller-visible error code.
type Code string

const (
	CodeValidation Code = "VALIDATION"
	// CodeNotFound is returned identically whether the resource is absent or
	// merely hidden from the caller, so existence never leaks.
	CodeNotFound   Code = "NOT_FOUND_OR_HIDDEN"
	CodePermission Code = "PERMISSION_DENIED"
	CodeConflict   Code = "CONFLICT"
	CodeInternal   Code = "INTERNAL"
)

// Error carries a stable code plus a caller-safe message. The wrapped cause
// is for internal logging only.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a typed error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validation creates a VALIDATION error.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NotFound creates the conflated not-found-or-hidden error.
func NotFound() *Error {
	return &Error{Code: CodeNotFound, Message: "resource not found"}
}

// Permission creates a PERMISSION_DENIED error.
func Permission(message string) *Error {
	return &Error{Code: CodePermission, Message: message}
}

// Conflict creates a CONFLICT error.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// Internal wraps a storage or transaction failure. The cause is retained for
// logging but the message returned to callers is generic.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", cause: cause}
}

// CodeOf extracts the code from err, defaulting to INTERNAL.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error code to an HTTP status for the API layer.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodePermission:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
