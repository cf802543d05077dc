package service

import (
	"errors"
	"net/http"
)

// Kind classifies every error the HTTP layer can surface.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindUnauthorized
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status. Duplicate-key conflicts are a 400,
// not a 409.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error shape returned by services. Fields holds
// per-field messages for validation and conflict errors; Err holds the
// underlying cause, never shown to clients outside development mode.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func FieldError(field, message string) *Error {
	return ValidationError("validation failed", map[string]string{field: message})
}

func UnauthenticatedError(message string, cause error) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message, Err: cause}
}

func UnauthorizedError(message string, cause error) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Err: cause}
}

func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func ConflictError(field, message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Fields: map[string]string{field: message}}
}

func InternalError(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: cause}
}

// KindOf reports the kind of err, treating anything that is not an *Error as
// internal.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// AsError converts err into an *Error, wrapping unknown errors as internal.
func AsError(err error) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return InternalError(err)
}
