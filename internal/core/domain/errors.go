package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigurationMissing indicates required settings are absent.
	// Fatal for the operation; never retried.
	ErrConfigurationMissing = errors.New("configuration missing")

	// OAuth handshake errors.

	// ErrInvalidState indicates a callback state that was never issued, already
	// consumed or expired.
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrMissingCode indicates a callback without an authorization code.
	ErrMissingCode = errors.New("missing authorization code")

	// ErrTokenExchangeFailed indicates the authorization server rejected the code exchange.
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrRefreshFailed indicates the authorization server rejected the refresh grant.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrAuthRequired indicates no usable credential exists for the session.
	// Callers should prompt for re-authorization.
	ErrAuthRequired = errors.New("authorization required")

	// Push errors.

	// ErrValidationFailed indicates a record lacks required mapped fields.
	ErrValidationFailed = errors.New("validation failed")

	// ErrUpstreamPushFailed indicates the ERP answered a push with a non-2xx status.
	ErrUpstreamPushFailed = errors.New("upstream push failed")

	// ErrFlagPersistenceFailed indicates the ERP accepted a record but the
	// pushed flag could not be written back.
	ErrFlagPersistenceFailed = errors.New("flag persistence failed")
)

// UpstreamError carries the status and body returned by a remote endpoint.
// Kind is one of ErrTokenExchangeFailed, ErrRefreshFailed or ErrUpstreamPushFailed.
type UpstreamError struct {
	Kind       error
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", e.Kind, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Kind
}

// ValidationError lists the required payload fields a record is missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: missing required field(s): %s", ErrValidationFailed, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// MissingSettingsError names the configuration keys that are unset.
type MissingSettingsError struct {
	Keys []string
}

func (e *MissingSettingsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConfigurationMissing, strings.Join(e.Keys, ", "))
}

func (e *MissingSettingsError) Unwrap() error {
	return ErrConfigurationMissing
}
