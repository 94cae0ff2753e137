// Package common defines shared constants and sentinel errors used across
// client and server layers of AccountKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. ErrorInvalidEntry is resolved client-side and must
	// never reach the account store.
	ErrorInvalidEntry = errors.New("invalid entry")

	// ErrorRestorePending is not a failure: a signup collided with a
	// soft-deleted account and the caller has to choose between restoring
	// it and signing up with a different email.
	ErrorRestorePending = errors.New("restore pending")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors. Expired, revoked and forged refresh tokens all
	// collapse into ErrSessionExpired on the caller side: the only remedy
	// is re-authentication.
	ErrTokenExpired   = errors.New("token expired")
	ErrSessionExpired = errors.New("session expired")

	// Transport errors (no usable response from the server).
	ErrServerUnavailable = errors.New("no server response")
)
