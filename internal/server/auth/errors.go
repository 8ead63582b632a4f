package auth

import "errors"

// Named failures returned by the session auth service. Expected negative
// outcomes (wrong password, unknown session) are never errors; they are
// returned as zero values with a nil error.
var (
	// ErrAlreadyRegistered indicates a registration attempt for an email that
	// already has an account.
	ErrAlreadyRegistered = errors.New("email already registered")

	// ErrUnknownUser indicates a password-reset request for an email with no
	// account.
	ErrUnknownUser = errors.New("unknown user")

	// ErrUnknownToken indicates a reset token that no user currently holds,
	// including tokens already consumed by a previous password change.
	ErrUnknownToken = errors.New("unknown reset token")

	// ErrInvalidInput indicates a missing or empty required argument.
	ErrInvalidInput = errors.New("invalid input")
)
