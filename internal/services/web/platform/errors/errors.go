// Package errors defines typed web failures that carry an HTTP status class
// and a localization key for the message shown to the user.
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

// Kind classifies application failures for consistent HTTP mapping.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	// KindUpstream marks a failure of the product API.
	KindUpstream Kind = "upstream"
)

// Error is a typed web application failure.
type Error struct {
	Kind  Kind
	Key   string
	Cause error
}

// Error renders the cause, or the kind when there is none.
func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Cause.Error()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// E builds a typed Error with a localization key.
func E(kind Kind, key string) error {
	return &Error{Kind: kind, Key: strings.TrimSpace(key)}
}

// Wrap classifies cause. A nil cause yields nil.
func Wrap(kind Kind, key string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Key: strings.TrimSpace(key), Cause: cause}
}

// LocalizationKey returns the structured localization key when available.
func LocalizationKey(err error) string {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return ""
	}
	return appErr.Key
}

// KindOf returns the kind of the outermost typed error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return KindUnknown
	}
	return appErr.Kind
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
