package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by *APIError. Use errors.Is() to check.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotConfigured  = errors.New("not configured")
	ErrUnavailable    = errors.New("service unavailable")
	ErrServer         = errors.New("server error")
)

// Error codes sent by the server.
const (
	codeNotConfigured = "not_configured"
)

// APIError is a non-2xx reply.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("usersearch: http %d", e.StatusCode)
	}
	return fmt.Sprintf("usersearch: %s: %s", e.Code, e.Message)
}

// Is maps the status and code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotConfigured:
		return e.Code == codeNotConfigured
	case ErrUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable || e.StatusCode == http.StatusBadGateway
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}
