// Package apperr defines the typed domain errors raised by the work core.
// Every error carries a stable Kind that transports map to a status code.
// This package has no internal dependencies so it can be imported anywhere.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates domain errors.
type Kind string

const (
	KindValidation Kind = "validation"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Error is a domain error with a stable kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, never shown to callers
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP-equivalent status for the error kind.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// HTTPStatus maps a kind to its HTTP-equivalent status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// Permission reports an actor that may not perform an action.
func Permission(format string, args ...any) *Error {
	return newf(KindPermission, format, args...)
}

// NotFound reports an absent entity, or one outside the actor's workspace.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict reports an illegal transition or a no-op update.
func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// Internal wraps an unexpected failure. The message is generic; cause is kept for logs.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: cause}
}

// KindOf returns the kind of err, or KindInternal for errors that carry none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsDomain reports whether err is (or wraps) a typed domain error.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return err != nil && KindOf(err) == KindConflict }

// IsPermission reports whether err is a permission error.
func IsPermission(err error) bool { return err != nil && KindOf(err) == KindPermission }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }
