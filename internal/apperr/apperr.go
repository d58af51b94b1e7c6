// Package apperr defines the error kinds shared across the service.
// Repos and services wrap these with %w so callers can classify failures
// with errors.Is without depending on message text.
package apperr

import "errors"

var (
	// ErrNotFound: the referenced product/order/user/cart row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: a precondition on entity state failed (bad status
	// transition, expired return window, already-resolved return, ...).
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorized: the actor lacks ownership or role for the target.
	ErrUnauthorized = errors.New("unauthorized")
)
