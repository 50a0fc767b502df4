// Package common defines shared constants and sentinel errors used across
// client and server layers of chathub. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrInternal   = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Credential errors. A missing account and a wrong password are
	// deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrMissingToken  = errors.New("missing token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenMismatch = errors.New("token mismatch")
)
