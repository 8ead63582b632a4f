package crypto

import "github.com/google/uuid"

// NewToken returns a new unpredictable opaque identifier in canonical UUIDv4
// form (122 bits of CSPRNG randomness).
//
// Session ids and password-reset tokens share this format; they differ only
// in which User column stores them.
func NewToken() string {
	return uuid.New().String()
}
