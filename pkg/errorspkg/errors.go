// Package errorspkg provides common app errors.
//
// Every error that crosses a layer or a service boundary carries a Kind, so the
// HTTP status of a failure is decided by its type and never by its message.
package errorspkg

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how callers are expected to react to it.
type Kind uint8

// Error kinds.
const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUpstream
	KindTransport
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// ErrInternal indicates internal server error.
var ErrInternal = New(KindInternal, "internal")

// Error is the typed error shared by all services.
type Error struct {
	Kind Kind
	Msg  string
	// Status and Body hold the origin response of an upstream failure.
	Status int
	Body   []byte
	Err    error
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap returns an error of the given kind that wraps err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Upstream returns an error describing a non-2xx answer of a downstream service.
func Upstream(status int, body []byte, msg string) *Error {
	return &Error{Kind: KindUpstream, Msg: msg, Status: status, Body: body}
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg == "" {
			return e.Err.Error()
		}

		return e.Msg + ": " + e.Err.Error()
	}

	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost typed error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode maps err to the HTTP status code clients should see.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		if e.Status >= 400 {
			return e.Status
		}

		return http.StatusBadGateway
	case KindTransport:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to expose to clients.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return ErrInternal.Msg
	}

	if e.Kind == KindTransport || e.Kind == KindTimeout {
		return e.Msg
	}

	return e.Error()
}
