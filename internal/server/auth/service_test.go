package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authkeeper/internal/crypto"
)

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	user, err := service.Register(ctx, "bob@bob.com", "mySuperPwd")
	require.NoError(t, err)
	assert.Equal(t, "bob@bob.com", user.Email)
	assert.Positive(t, user.ID)

	// The password is stored as a verifying digest, never in clear.
	require.NotNil(t, user.HashedPassword)
	assert.NotEqual(t, "mySuperPwd", *user.HashedPassword)
	assert.True(t, crypto.VerifyPassword("mySuperPwd", *user.HashedPassword))

	assert.Nil(t, user.SessionID)
	assert.Nil(t, user.ResetToken)
}

func TestService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	first, err := service.Register(ctx, "bob@bob.com", "firstPwd")
	require.NoError(t, err)

	_, err = service.Register(ctx, "bob@bob.com", "secondPwd")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// The original record is untouched.
	stored := store.users[first.ID]
	require.NotNil(t, stored.HashedPassword)
	assert.True(t, crypto.VerifyPassword("firstPwd", *stored.HashedPassword))
	assert.False(t, crypto.VerifyPassword("secondPwd", *stored.HashedPassword))
}

func TestService_Register_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	store.findErr = errors.New("store is down")
	service := NewService(testLogger(), store)

	_, err := service.Register(ctx, "bob@bob.com", "mySuperPwd")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyRegistered)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	_, err := service.Register(ctx, "bob@bob.com", "mySuperPwd")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{name: "valid credentials", email: "bob@bob.com", password: "mySuperPwd", want: true},
		{name: "wrong password", email: "bob@bob.com", password: "wrong", want: false},
		// Unknown email is the same negative outcome as a wrong password.
		{name: "unknown email", email: "alice@bob.com", password: "mySuperPwd", want: false},
		{name: "empty password", email: "bob@bob.com", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := service.Authenticate(ctx, tt.email, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	user, err := service.Register(ctx, "bob@bob.com", "mySuperPwd")
	require.NoError(t, err)

	sessionID, err := service.CreateSession(ctx, "bob@bob.com")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	resolved, err := service.ResolveSession(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)

	// A second login overwrites and thereby invalidates the first session.
	secondID, err := service.CreateSession(ctx, "bob@bob.com")
	require.NoError(t, err)
	require.NotEmpty(t, secondID)
	assert.NotEqual(t, sessionID, secondID)

	stale, err := service.ResolveSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Nil(t, stale)

	current, err := service.ResolveSession(ctx, secondID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)

	require.NoError(t, service.DestroySession(ctx, user.ID))

	gone, err := service.ResolveSession(ctx, secondID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestService_CreateSession_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	service := NewService(testLogger(), newMockUserStore())

	sessionID, err := service.CreateSession(ctx, "nobody@bob.com")
	require.NoError(t, err)
	assert.Empty(t, sessionID)
}

func TestService_ResolveSession_Negative(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	_, err := service.Register(ctx, "bob@bob.com", "mySuperPwd")
	require.NoError(t, err)

	user, err := service.ResolveSession(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = service.ResolveSession(ctx, "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestService_DestroySession_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	user, err := service.Register(ctx, "bob@bob.com", "mySuperPwd")
	require.NoError(t, err)

	// No active session: still a no-op success.
	require.NoError(t, service.DestroySession(ctx, user.ID))
	require.NoError(t, service.DestroySession(ctx, user.ID))

	// Unknown user id: no-op as well.
	require.NoError(t, service.DestroySession(ctx, 9999))
}

func TestService_PasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	_, err := service.Register(ctx, "bob@bob.com", "oldPwd")
	require.NoError(t, err)

	token, err := service.RequestPasswordReset(ctx, "bob@bob.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, service.RedeemPasswordReset(ctx, token, "newPwd"))

	ok, err := service.Authenticate(ctx, "bob@bob.com", "newPwd")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.Authenticate(ctx, "bob@bob.com", "oldPwd")
	require.NoError(t, err)
	assert.False(t, ok)

	// The token is single-use: the field was cleared with the password
	// update, so a second redemption fails.
	err = service.RedeemPasswordReset(ctx, token, "anotherPwd")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestService_RequestPasswordReset_UnknownUser(t *testing.T) {
	ctx := context.Background()
	service := NewService(testLogger(), newMockUserStore())

	_, err := service.RequestPasswordReset(ctx, "nobody@bob.com")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestService_RequestPasswordReset_OverwritesPendingToken(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	_, err := service.Register(ctx, "bob@bob.com", "mySuperPwd")
	require.NoError(t, err)

	first, err := service.RequestPasswordReset(ctx, "bob@bob.com")
	require.NoError(t, err)

	second, err := service.RequestPasswordReset(ctx, "bob@bob.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Only the latest token is redeemable.
	assert.ErrorIs(t, service.RedeemPasswordReset(ctx, first, "newPwd"), ErrUnknownToken)
	assert.NoError(t, service.RedeemPasswordReset(ctx, second, "newPwd"))
}

func TestService_RedeemPasswordReset_InvalidInput(t *testing.T) {
	ctx := context.Background()
	service := NewService(testLogger(), newMockUserStore())

	assert.ErrorIs(t, service.RedeemPasswordReset(ctx, "", "newPwd"), ErrInvalidInput)
	assert.ErrorIs(t, service.RedeemPasswordReset(ctx, "some-token", ""), ErrInvalidInput)
}

func TestService_RedeemPasswordReset_UnknownToken(t *testing.T) {
	ctx := context.Background()
	service := NewService(testLogger(), newMockUserStore())

	assert.ErrorIs(t, service.RedeemPasswordReset(ctx, "no-such-token", "newPwd"), ErrUnknownToken)
}

func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMockUserStore()
	service := NewService(testLogger(), store)

	user, err := service.Register(ctx, "a@b.com", "pw1")
	require.NoError(t, err)

	ok, err := service.Authenticate(ctx, "a@b.com", "pw1")
	require.NoError(t, err)
	require.True(t, ok)

	sid, err := service.CreateSession(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, sid)

	resolved, err := service.ResolveSession(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)

	require.NoError(t, service.DestroySession(ctx, user.ID))

	gone, err := service.ResolveSession(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
