// Package apperr defines the error taxonomy shared by every service in the
// core. Services return kind-carrying errors; only the HTTP boundary turns a
// kind into a status code, so the core stays transport-agnostic.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independent of transport.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalid
	KindCreateFailed
	KindUpdateFailed
	KindDeleteFailed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindCreateFailed:
		return "create_failed"
	case KindUpdateFailed:
		return "update_failed"
	case KindDeleteFailed:
		return "delete_failed"
	default:
		return "unknown"
	}
}

// Error is a kind-classified error, optionally wrapping a cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

func NotFound(format string, args ...interface{}) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &Error{kind: KindForbidden, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) error {
	return &Error{kind: KindInvalid, msg: fmt.Sprintf(format, args...)}
}

func CreateFailed(msg string, err error) error {
	return &Error{kind: KindCreateFailed, msg: msg, err: err}
}

func UpdateFailed(msg string, err error) error {
	return &Error{kind: KindUpdateFailed, msg: msg, err: err}
}

func DeleteFailed(msg string, err error) error {
	return &Error{kind: KindDeleteFailed, msg: msg, err: err}
}

// KindOf extracts the Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// HTTPStatus is the single kind-to-status lookup used at the HTTP boundary.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	case KindCreateFailed, KindUpdateFailed, KindDeleteFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
