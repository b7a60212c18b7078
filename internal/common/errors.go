// Package common defines shared sentinel errors used across the service
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrDuplicateAccount = errors.New("account already exists")

	// Validation errors (missing/empty required fields).
	ErrValidation = errors.New("validation error")

	// Auth errors. Unknown identity and wrong password deliberately share
	// ErrInvalidCredentials so responses do not leak which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors. ErrTokenMismatch means the token verified
	// cryptographically but does not match the value stored on the account:
	// it was rotated away and is treated as replayed.
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenMismatch   = errors.New("refresh token mismatch")
	ErrTokenGeneration = errors.New("token generation failed")

	// Media store boundary errors.
	ErrMediaOperation = errors.New("media operation failed")

	// Generic/internal flow control.
	ErrInternal = errors.New("internal error")
)
