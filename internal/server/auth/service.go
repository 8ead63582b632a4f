package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/authkeeper/internal/crypto"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

// Service implements cookie/session authentication: registration, login
// verification, session issuance and destruction, and one-time password-reset
// tokens. One user holds at most one live session id; issuing a new session
// overwrites and thereby invalidates the previous one.
//
// Construct one Service at process start and pass it by reference to the
// handlers; there is no package-level instance.
type Service struct {
	logger *slog.Logger
	users  storage.UserStore
}

// NewService creates a session auth service over the given user store.
func NewService(logger *slog.Logger, users storage.UserStore) *Service {
	return &Service{
		logger: logger,
		users:  users,
	}
}

// Register creates a new account with a freshly hashed password.
// Returns ErrAlreadyRegistered if a user with this email already exists;
// repeated registration never overwrites the existing record.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	_, err := s.users.FindUserBy(ctx, storage.FieldEmail, email)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	digest, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("email", email),
		slog.Int64("user_id", user.ID))

	return user, nil
}

// Authenticate reports whether email and password identify a registered
// user. Unknown email and wrong password are the same negative outcome —
// (false, nil) — so callers cannot enumerate accounts through the error
// shape. A non-nil error means the store itself failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (bool, error) {
	user, err := s.users.FindUserBy(ctx, storage.FieldEmail, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.HashedPassword == nil {
		return false, nil
	}

	return crypto.VerifyPassword(password, *user.HashedPassword), nil
}

// CreateSession issues a new opaque session id for the user with this email
// and persists it, overwriting any previous session id. Returns ("", nil)
// for an unknown email.
//
// CreateSession does not verify the password; callers must have called
// Authenticate first.
func (s *Service) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindUserBy(ctx, storage.FieldEmail, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	sessionID := crypto.NewToken()
	if err := s.users.UpdateUser(ctx, user.ID, storage.Changes{
		storage.FieldSessionID: &sessionID,
	}); err != nil {
		return "", fmt.Errorf("failed to store session id: %w", err)
	}

	s.logger.DebugContext(ctx, "session created", slog.Int64("user_id", user.ID))

	return sessionID, nil
}

// ResolveSession returns the user holding sessionID, or (nil, nil) if
// sessionID is empty or no user holds it.
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	user, err := s.users.FindUserBy(ctx, storage.FieldSessionID, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	return user, nil
}

// DestroySession clears the session id of the user with the given id.
// Unknown ids and users without an active session are both no-ops.
func (s *Service) DestroySession(ctx context.Context, userID int64) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.HasSession() {
		return nil
	}

	if err := s.users.UpdateUser(ctx, user.ID, storage.Changes{
		storage.FieldSessionID: nil,
	}); err != nil {
		return fmt.Errorf("failed to clear session id: %w", err)
	}

	s.logger.DebugContext(ctx, "session destroyed", slog.Int64("user_id", user.ID))

	return nil
}

// RequestPasswordReset issues a new reset token for the user with this email
// and persists it, overwriting any prior pending token. Returns
// ErrUnknownUser if no account has the email.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindUserBy(ctx, storage.FieldEmail, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", ErrUnknownUser
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	token := crypto.NewToken()
	if err := s.users.UpdateUser(ctx, user.ID, storage.Changes{
		storage.FieldResetToken: &token,
	}); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset requested", slog.Int64("user_id", user.ID))

	return token, nil
}

// RedeemPasswordReset consumes resetToken and sets the user's password to
// newPassword. The new digest and the token clear are applied as one atomic
// update, so a token can never be redeemed twice: the second attempt fails
// with ErrUnknownToken because the field is already gone.
func (s *Service) RedeemPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindUserBy(ctx, storage.FieldResetToken, resetToken)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUnknownToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	digest, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdateUser(ctx, user.ID, storage.Changes{
		storage.FieldHashedPassword: &digest,
		storage.FieldResetToken:     nil,
	}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password updated via reset token", slog.Int64("user_id", user.ID))

	return nil
}
