// Package apperr carries the failure kind of a user action so transports can
// map it to a status code and the workspace can show it as a banner.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by the action that raised it.
type Kind string

const (
	KindAuth       Kind = "auth"
	KindFetch      Kind = "fetch"
	KindWrite      Kind = "write"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindBusy       Kind = "busy"
	KindInternal   Kind = "internal"
)

// Error is a structured application error.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s[%s]: %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches kind and a user-facing message to err. A nil err yields nil.
func Wrap(err error, kind Kind, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, format string, args ...any) *Error {
	return New(KindValidation, code, fmt.Sprintf(format, args...))
}

func NotFound(code, format string, args ...any) *Error {
	return New(KindNotFound, code, fmt.Sprintf(format, args...))
}

// ErrBusy is returned while another action of the same session is pending.
var ErrBusy = New(KindBusy, "ACTION_PENDING", "another action is still in progress")

// As extracts the *Error in err's chain. Errors without one are reported as internal.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or KindInternal.
func KindOf(err error) Kind {
	return As(err).Kind
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindFetch, KindWrite:
		return http.StatusBadGateway
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindBusy:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
