// Package common defines shared constants and sentinel errors used across
// client and server layers of TaskKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("already exists")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid, expired, revoked or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
