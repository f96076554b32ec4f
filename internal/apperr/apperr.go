// Package apperr is the error taxonomy shared by services and handlers. A
// service returns an *Error carrying a Kind and a message key; the HTTP layer
// maps the Kind to a status and the key to a localized message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Key     string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Key)
}

func (e *Error) Unwrap() error { return e.Err }

// Message renders the error for a client in the given locale. Internal errors
// never expose the wrapped cause.
func (e *Error) Message(locale string) string {
	return Text(e.Key, locale)
}

func New(kind Kind, key string) *Error {
	return &Error{Kind: kind, Key: key}
}

func Validation(details any) *Error {
	return &Error{Kind: KindValidation, Key: KeyValidationFailed, Details: details}
}

func BadRequest(key string) *Error      { return New(KindBadRequest, key) }
func Unauthenticated(key string) *Error { return New(KindUnauthenticated, key) }
func Forbidden(key string) *Error       { return New(KindForbidden, key) }
func NotFound(key string) *Error        { return New(KindNotFound, key) }
func Conflict(key string) *Error        { return New(KindConflict, key) }

// Internal wraps an infrastructure failure. A nil err returns nil.
func Internal(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInternal, Key: KeyInternal, Err: err}
}

// From coerces any error into an *Error; unknown errors become internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
