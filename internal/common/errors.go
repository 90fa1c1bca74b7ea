// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")

	// Uniqueness pre-check errors; ErrDuplicate is the storage-level form
	// when the unique index fires without telling us which key collided.
	ErrUsernameTaken = errors.New("username taken")
	ErrEmailTaken    = errors.New("email already in use")

	// Authentication errors, in check order: a request without a token is
	// distinct from a request whose token resolves to nothing.
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")

	// Authorization errors.
	ErrNotAdmin = errors.New("not an admin")
	ErrNotOwner = errors.New("not the owner")

	// Upload limits.
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrContentTooLarge = errors.New("content too large")

	// Validation errors.
	ErrNoFile          = errors.New("no file provided")
	ErrBadExtension    = errors.New("invalid file extension")
	ErrBadContentType  = errors.New("invalid file type")
	ErrBadCredentials  = errors.New("invalid username/password")
	ErrMissingArgument = errors.New("missing argument")

	// Service-level flow control.
	ErrInternal = errors.New("internal error")
)
