package auth

import (
	"context"
	"io"
	"log/slog"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

// mockUserStore is an in-memory implementation of storage.UserStore for
// testing, with injectable errors.
type mockUserStore struct {
	users     map[int64]*models.User
	nextID    int64
	findErr   error
	createErr error
	updateErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[int64]*models.User)}
}

func (m *mockUserStore) CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	hp := hashedPassword
	user := &models.User{
		ID:             m.nextID,
		Email:          email,
		HashedPassword: &hp,
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserStore) FindUserBy(ctx context.Context, field storage.Field, value string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	users, err := m.FindUsersBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, storage.ErrUserNotFound
	}
	return users[0], nil
}

func (m *mockUserStore) FindUsersBy(ctx context.Context, field storage.Field, value string) ([]*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []*models.User
	for id := int64(1); id <= m.nextID; id++ {
		user, ok := m.users[id]
		if !ok {
			continue
		}
		if v, ok := mockFieldValue(user, field); ok && v == value {
			result = append(result, user)
		}
	}
	return result, nil
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStore) UpdateUser(ctx context.Context, id int64, changes storage.Changes) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if err := changes.Validate(); err != nil {
		return err
	}
	user, ok := m.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	for field, value := range changes {
		switch field {
		case storage.FieldEmail:
			if value != nil {
				user.Email = *value
			}
		case storage.FieldHashedPassword:
			user.HashedPassword = value
		case storage.FieldSessionID:
			user.SessionID = value
		case storage.FieldResetToken:
			user.ResetToken = value
		}
	}
	return nil
}

func mockFieldValue(user *models.User, field storage.Field) (string, bool) {
	switch field {
	case storage.FieldEmail:
		return user.Email, true
	case storage.FieldHashedPassword:
		if user.HashedPassword == nil {
			return "", false
		}
		return *user.HashedPassword, true
	case storage.FieldSessionID:
		if user.SessionID == nil {
			return "", false
		}
		return *user.SessionID, true
	case storage.FieldResetToken:
		if user.ResetToken == nil {
			return "", false
		}
		return *user.ResetToken, true
	}
	return "", false
}

// testLogger discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
