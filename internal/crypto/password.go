// Package crypto provides password hashing and opaque token generation for
// the authentication service.
package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the bcrypt work factor used for new password digests.
// At cost 12 hashing takes roughly 250 ms on a modern server CPU.
const BcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt and returns the
// modular-crypt-format digest (e.g. "$2a$12$...").
// A fresh 128-bit salt is generated internally on every call, so hashing the
// same password twice produces different digests.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// VerifyPassword reports whether password matches the stored bcrypt digest.
// The salt and cost are read from the digest itself and the comparison is
// constant-time. Malformed digests yield false, never an error: a digest that
// cannot be parsed cannot match any password.
func VerifyPassword(password, digest string) bool {
	if password == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
