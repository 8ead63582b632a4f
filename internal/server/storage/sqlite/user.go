package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

const userColumns = "id, email, hashed_password, session_id, reset_token, created_at, updated_at"

// CreateUser inserts a new user and returns the record with its assigned id.
func (s *Storage) CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error) {
	query := `
		INSERT INTO users (email, hashed_password, created_at)
		VALUES (?, ?, ?)
	`

	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, query, email, hashedPassword, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted user id: %w", err)
	}

	return &models.User{
		ID:             id,
		Email:          email,
		HashedPassword: &hashedPassword,
		CreatedAt:      now,
	}, nil
}

// FindUserBy retrieves the first user whose field equals value.
func (s *Storage) FindUserBy(ctx context.Context, field storage.Field, value string) (*models.User, error) {
	if !field.Updatable() {
		return nil, storage.ErrInvalidField
	}

	// field comes from the closed storage.Field set, never from user input.
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s = ?
		LIMIT 1
	`, userColumns, field)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// FindUsersBy retrieves every user whose field equals value.
func (s *Storage) FindUsersBy(ctx context.Context, field storage.Field, value string) ([]*models.User, error) {
	if !field.Updatable() {
		return nil, storage.ErrInvalidField
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s = ?
		ORDER BY id
	`, userColumns, field)

	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*models.User

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// GetUserByID retrieves a user by id.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = ?
	`, userColumns)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateUser applies all changes to one user row in a single UPDATE.
func (s *Storage) UpdateUser(ctx context.Context, id int64, changes storage.Changes) error {
	if err := changes.Validate(); err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+2)

	for field, value := range changes {
		assignments = append(assignments, fmt.Sprintf("%s = ?", field))
		if value == nil {
			args = append(args, nil)
		} else {
			args = append(args, *value)
		}
	}

	assignments = append(assignments, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(assignments, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var hashedPassword, sessionID, resetToken sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&hashedPassword,
		&sessionID,
		&resetToken,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if hashedPassword.Valid {
		user.HashedPassword = &hashedPassword.String
	}
	if sessionID.Valid {
		user.SessionID = &sessionID.String
	}
	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}

	return user, nil
}
