// Package api defines the JSON response types shared by the server handlers
// and the CLI client. Requests are form-encoded, so only responses need
// shared types.
package api

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "session_id"

// MessageResponse is the generic success payload for register, login and
// password-update responses.
type MessageResponse struct {
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// ProfileResponse carries the email of the user owning the session cookie.
type ProfileResponse struct {
	Email string `json:"email"`
}

// ResetTokenResponse carries a freshly issued password-reset token.
type ResetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// MeResponse describes the user resolved from a Basic Authorization header.
type MeResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// ErrorResponse is the error payload for all non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
