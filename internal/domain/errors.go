package domain

import (
	"context"
	"errors"
	"net/http"
)

// ErrorKind is the closed set of client-facing failure categories.
// Every adapter, network, or filesystem error is classified into
// exactly one kind at the request boundary.
type ErrorKind string

const (
	KindUnsupportedPlatform ErrorKind = "unsupported_platform"
	KindAccessDenied        ErrorKind = "access_denied"
	KindNotFound            ErrorKind = "not_found"
	KindTimeout             ErrorKind = "timeout"
	KindUpstreamFailure     ErrorKind = "upstream_failure"
	KindEmptyResult         ErrorKind = "empty_result"
	KindInternal            ErrorKind = "internal_error"
)

// HTTPStatus returns the HTTP status code bound to the kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindUnsupportedPlatform, KindUpstreamFailure, KindEmptyResult:
		return http.StatusBadRequest
	case KindAccessDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error wraps a failure with its classified kind and a client-safe
// message. Raw upstream error text stays in Err for server-side logs.
type Error struct {
	Kind    ErrorKind
	Message string
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

// NewError creates a classified error without an underlying cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a classified error wrapping an underlying cause.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classified kind from an error chain. Deadline
// errors map to KindTimeout; anything unclassified is KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

// ClientMessage returns the message safe to send to callers. Internal
// errors get a generic message; everything else keeps its classified
// message.
func ClientMessage(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "operation timed out, please retry"
	}
	return "internal server error"
}
