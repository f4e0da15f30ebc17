// internal/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into the taxonomy shared by all services.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalid // malformed input or business-rule violation
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindUnavailable
	KindRateLimited
)

// Error is a classified error carrying an optional per-field error map.
type Error struct {
	kind    Kind
	message string
	fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the classification of the error.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the user-facing message without the wrapped cause.
func (e *Error) Message() string { return e.message }

// Fields returns the per-field error messages, if any.
func (e *Error) Fields() map[string]string { return e.fields }

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Wrap creates a classified error wrapping a cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// Validation creates a validation error with per-field messages.
func Validation(fields map[string]string) *Error {
	return &Error{kind: KindValidation, message: "Validation failed", fields: fields}
}

func NotFoundf(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Invalidf(format string, args ...any) *Error {
	return New(KindInvalid, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func Unauthorizedf(format string, args ...any) *Error {
	return New(KindUnauthorized, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) *Error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

func Unavailablef(format string, args ...any) *Error {
	return New(KindUnavailable, fmt.Sprintf(format, args...))
}

func RateLimitedf(format string, args ...any) *Error {
	return New(KindRateLimited, fmt.Sprintf(format, args...))
}

// KindOf extracts the classification of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// MessageOf extracts the user-facing message of err. Unclassified errors
// are masked so internal details never leak into responses.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.message
	}
	return "Internal server error"
}

// FieldsOf extracts per-field error messages from err, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.fields
	}
	return nil
}
