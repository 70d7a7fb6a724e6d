// Package console is the client core of the admin console: session and
// token management, the permission catalog, the role-permission
// resolver, and the access guard. It talks to the backend over its REST
// envelope and owns no rendering concerns.
package console

import (
	"errors"
	"fmt"
)

// Sentinel errors mirroring the backend's envelope codes.
var (
	ErrAuthenticationFailed = errors.New("console: authentication failed")
	ErrSessionExpired       = errors.New("console: session expired")
	ErrForbidden            = errors.New("console: forbidden")
	ErrValidation           = errors.New("console: validation failed")
	ErrNotFound             = errors.New("console: not found")
	ErrConflict             = errors.New("console: conflict")
)

// APIError carries the backend's envelope code and message verbatim,
// wrapped around the matching sentinel so errors.Is works.
type APIError struct {
	Code    int
	Message string
	wrapped error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("console: backend %d: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.wrapped }

func apiError(code int, message string) error {
	var sentinel error
	switch code {
	case 400:
		sentinel = ErrValidation
	case 401:
		sentinel = ErrSessionExpired
	case 403:
		sentinel = ErrForbidden
	case 404:
		sentinel = ErrNotFound
	case 409:
		sentinel = ErrConflict
	default:
		sentinel = errors.New("console: backend error")
	}
	return &APIError{Code: code, Message: message, wrapped: sentinel}
}

// NetworkError marks a transport-level failure: the request never
// produced a backend envelope, so no conclusion about the session can
// be drawn from it.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("console: network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
