package models

import "time"

// User represents one registered account.
//
// HashedPassword, SessionID and ResetToken are pointers because the
// corresponding columns are nullable: a nil SessionID means the user has no
// active session, a nil ResetToken means no password reset is pending.
type User struct {
	ID             int64      `json:"id"`              // assigned by the store on creation
	Email          string     `json:"email"`           // login identifier, unique by registration logic
	HashedPassword *string    `json:"hashed_password"` // bcrypt digest, nil before a password is set
	SessionID      *string    `json:"session_id"`      // opaque session id, at most one per user
	ResetToken     *string    `json:"reset_token"`     // single-use password reset token
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// HasSession reports whether the user currently holds an active session id.
func (u *User) HasSession() bool {
	return u.SessionID != nil && *u.SessionID != ""
}
