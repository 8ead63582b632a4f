// Package storage defines the persistence contracts for the authentication
// server. Implementations live in the sqlite and boltdb subpackages.
package storage

import (
	"context"

	"github.com/iudanet/authkeeper/internal/models"
)

// Field names a User column usable in lookups and updates. The set is closed
// on purpose: update requests are validated against it at the contract level
// instead of reflecting over the live record.
type Field string

const (
	FieldEmail          Field = "email"
	FieldHashedPassword Field = "hashed_password"
	FieldSessionID      Field = "session_id"
	FieldResetToken     Field = "reset_token"
)

// updatableFields is the closed set accepted by UpdateUser.
var updatableFields = map[Field]bool{
	FieldEmail:          true,
	FieldHashedPassword: true,
	FieldSessionID:      true,
	FieldResetToken:     true,
}

// Updatable reports whether f may appear in a Changes set.
func (f Field) Updatable() bool {
	return updatableFields[f]
}

// Changes is a set of column updates keyed by field. A nil value clears the
// column to NULL. All changes in one set are applied atomically.
type Changes map[Field]*string

// Validate returns ErrInvalidField if any key is outside the updatable set.
func (c Changes) Validate() error {
	for f := range c {
		if !f.Updatable() {
			return ErrInvalidField
		}
	}
	return nil
}

// UserStore defines the user persistence contract.
//
// Each call is atomic with respect to the single record it touches. The store
// does not enforce email uniqueness; registration logic does, and
// FindUsersBy exists so callers can scan duplicate rows.
type UserStore interface {
	// CreateUser inserts a new user with the given email and password digest
	// and returns the record including its assigned id.
	CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error)

	// FindUserBy returns the single user whose field equals value.
	// Returns ErrUserNotFound when no row matches. When several rows match a
	// non-unique field the result is implementation-defined (first match).
	FindUserBy(ctx context.Context, field Field, value string) (*models.User, error)

	// FindUsersBy returns every user whose field equals value, possibly none.
	FindUsersBy(ctx context.Context, field Field, value string) ([]*models.User, error)

	// GetUserByID returns the user with the given id.
	// Returns ErrUserNotFound if the id does not exist.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// UpdateUser applies all changes to the user with the given id as one
	// atomic unit. Returns ErrInvalidField if changes name an unknown column
	// and ErrUserNotFound if the id does not exist.
	UpdateUser(ctx context.Context, id int64, changes Changes) error
}
