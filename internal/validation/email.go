package validation

import (
	"fmt"
	"regexp"
)

// EmailPattern is a deliberately permissive shape check: one '@' with
// non-empty local part and a dotted domain. Full RFC 5322 parsing is not the
// goal; the store treats email as an opaque login identifier.
var EmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	// MaxEmailLen is the maximum accepted email length.
	MaxEmailLen = 250
	// MaxPasswordLen is the maximum accepted password length in bytes.
	// bcrypt silently truncates input beyond 72 bytes, so longer passwords
	// are rejected up front instead.
	MaxPasswordLen = 72
)

// ValidateEmail checks that email is non-empty, within length bounds, and
// shaped like an address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("email is not a valid address")
	}

	return nil
}

// ValidatePassword checks that password is non-empty and within the bcrypt
// input limit.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLen)
	}

	return nil
}
