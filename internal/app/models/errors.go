package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain specific errors for authentication, registration and the backend contract.
var (
	ErrNotFound           = errors.New("requested item not found")
	ErrConflict           = errors.New("item already exists or conflict")
	ErrUnauthenticated    = errors.New("authentication required or invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("action forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrValidation         = errors.New("validation failed")
	ErrNetwork            = errors.New("backend unreachable")
	ErrBusy               = errors.New("another request is already in progress")
	ErrInvalidSession     = errors.New("session requires both a token and a recognised role")
	ErrUnknownRole        = errors.New("unknown role")
	ErrRoleSwitchDisabled = errors.New("role switching is only available in development builds")
)

// ValidationError carries field-scoped messages produced client-side.
// It never involves a network round-trip.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UniquenessConflictError is a server-confirmed duplicate for a single form field.
type UniquenessConflictError struct {
	Field   string
	Message string
}

func (e *UniquenessConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Field, e.Message)
}

func (e *UniquenessConflictError) Unwrap() error { return ErrConflict }

// AuthenticationError means the backend rejected the credentials. The session is untouched.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "invalid username or password"
	}
	return e.Message
}

func (e *AuthenticationError) Unwrap() error { return ErrUnauthenticated }

// SessionExpiredError is returned for a 401 on a session-bearing request.
type SessionExpiredError struct {
	Endpoint string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired while calling %s", e.Endpoint)
}

func (e *SessionExpiredError) Unwrap() error { return ErrSessionExpired }

// NetworkError wraps transport failures (timeouts, refused connections).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// APIError is any other non-2xx backend answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}
