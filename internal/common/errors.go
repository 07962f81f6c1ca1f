// Package common defines shared constants, sentinel errors and small helpers
// used across SecureDrop components. Callers should use errors.Is to match
// the error values.
package common

import "errors"

var (
	// Startup errors.
	ErrConfiguration = errors.New("configuration error")
	ErrInvalidKey    = errors.New("invalid encryption key")

	// User directory errors.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Vault errors.
	ErrUnauthorized     = errors.New("unauthorized")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrNotFound         = errors.New("not found")

	// Storage errors.
	ErrCorruptStore = errors.New("corrupt record store")

	// Validation errors.
	ErrValidation = errors.New("validation error")
)
