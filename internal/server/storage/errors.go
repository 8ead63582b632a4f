package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that no user matched the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidField indicates that an update referenced a field outside the
	// closed set of updatable User columns.
	ErrInvalidField = errors.New("invalid user field")
)
