package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently across stores and providers.
	ErrNotFound = errors.New("resource not found")
	// ErrNotEntitled hides whether a payload exists or merely belongs to someone else.
	// Callers only ever see success=false, never a distinct forbidden signal.
	ErrNotEntitled = errors.New("not entitled")
	// ErrPayloadExpired signals a payment proof outside its validation window.
	// It is distinct from generic failure so tenants can ask users to retry.
	ErrPayloadExpired = errors.New("payload expired")
	// ErrNoValidationWindow signals a tenant with no window configuration at all.
	// This is a tenant-configuration gap, not a user error.
	ErrNoValidationWindow = errors.New("no validation time frame configured")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrOriginNotAllowed   = errors.New("origin not allowed")
	ErrUpstream           = errors.New("upstream unavailable")
	ErrConflict           = errors.New("conflict")
)
