package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

// CreateUser inserts a new user keyed by a NextSequence id.
func (s *Storage) CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error) {
	user := &models.User{
		Email:          email,
		HashedPassword: &hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		if bucket == nil {
			return fmt.Errorf("users bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate user id: %w", err)
		}
		user.ID = int64(seq)

		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		if err := bucket.Put(userKey(user.ID), data); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// errStopScan halts a ForEach scan once a match is found; it never escapes
// this package.
var errStopScan = errors.New("stop scan")

// FindUserBy retrieves the first user whose field equals value.
// BoltDB has no secondary indexes, so lookups scan the bucket in id order,
// stopping at the first match.
func (s *Storage) FindUserBy(ctx context.Context, field storage.Field, value string) (*models.User, error) {
	if !field.Updatable() {
		return nil, storage.ErrInvalidField
	}

	var found *models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		if bucket == nil {
			return fmt.Errorf("users bucket not found")
		}

		err := bucket.ForEach(func(k, v []byte) error {
			user := &models.User{}
			if err := json.Unmarshal(v, user); err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
			if v, ok := fieldValue(user, field); ok && v == value {
				found = user
				return errStopScan
			}
			return nil
		})
		if errors.Is(err, errStopScan) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, storage.ErrUserNotFound
	}

	return found, nil
}

// FindUsersBy retrieves every user whose field equals value.
func (s *Storage) FindUsersBy(ctx context.Context, field storage.Field, value string) ([]*models.User, error) {
	if !field.Updatable() {
		return nil, storage.ErrInvalidField
	}

	var users []*models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		if bucket == nil {
			return fmt.Errorf("users bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			user := &models.User{}
			if err := json.Unmarshal(v, user); err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
			if v, ok := fieldValue(user, field); ok && v == value {
				users = append(users, user)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

// GetUserByID retrieves a user by id.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		if bucket == nil {
			return fmt.Errorf("users bucket not found")
		}

		data := bucket.Get(userKey(id))
		if data == nil {
			return storage.ErrUserNotFound
		}

		user = &models.User{}
		if err := json.Unmarshal(data, user); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser applies all changes to one user record in a single transaction.
func (s *Storage) UpdateUser(ctx context.Context, id int64, changes storage.Changes) error {
	if err := changes.Validate(); err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		if bucket == nil {
			return fmt.Errorf("users bucket not found")
		}

		data := bucket.Get(userKey(id))
		if data == nil {
			return storage.ErrUserNotFound
		}

		user := &models.User{}
		if err := json.Unmarshal(data, user); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}

		for field, value := range changes {
			applyChange(user, field, value)
		}
		now := time.Now().UTC()
		user.UpdatedAt = &now

		updated, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		if err := bucket.Put(userKey(id), updated); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		return nil
	})
}

// userKey encodes an id as a big-endian key so bucket order follows id order.
func userKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// fieldValue reads a column off the record. The second return value is false
// when the column is NULL, so a nil column never matches any lookup value —
// the same semantics as SQL "column = ?".
func fieldValue(user *models.User, field storage.Field) (string, bool) {
	switch field {
	case storage.FieldEmail:
		return user.Email, true
	case storage.FieldHashedPassword:
		return deref(user.HashedPassword)
	case storage.FieldSessionID:
		return deref(user.SessionID)
	case storage.FieldResetToken:
		return deref(user.ResetToken)
	}
	return "", false
}

func applyChange(user *models.User, field storage.Field, value *string) {
	switch field {
	case storage.FieldEmail:
		if value != nil {
			user.Email = *value
		}
	case storage.FieldHashedPassword:
		user.HashedPassword = copyValue(value)
	case storage.FieldSessionID:
		user.SessionID = copyValue(value)
	case storage.FieldResetToken:
		user.ResetToken = copyValue(value)
	}
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func copyValue(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
