package userapi

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeSuccess is the envelope code the product API uses for success.
const CodeSuccess = 0

// Envelope codes the product API uses for common failures.
const (
	CodeParamsError   = 40000
	CodeNotLoggedIn   = 40100
	CodeNoAuth        = 40101
	CodeNotFound      = 40400
	CodeForbidden     = 40300
	CodeSystemError   = 50000
	CodeOperationFail = 50001
)

// ErrEmptyPayload is returned when a successful envelope carries no data.
var ErrEmptyPayload = errors.New("user api: empty payload")

// APIError is a non-success envelope returned with HTTP 2xx.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("user api: code %d", e.Code)
	}
	return fmt.Sprintf("user api: code %d: %s", e.Code, e.Message)
}

// NotLoggedIn reports whether the product API rejected the credentials.
func (e *APIError) NotLoggedIn() bool {
	return e.Code == CodeNotLoggedIn || e.Code == CodeNoAuth
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("user api: unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsInvalidCredentials reports whether err means the account or password was rejected.
func IsInvalidCredentials(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeParamsError || apiErr.NotLoggedIn()
}
