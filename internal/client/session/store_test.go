package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "http://localhost:8080", "session-abc"))

	got, err := s.Get(ctx, "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "session-abc", got)
}

func TestStore_Get_NoSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Get(ctx, "http://localhost:8080")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_Save_Overwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "http://localhost:8080", "first"))
	require.NoError(t, s.Save(ctx, "http://localhost:8080", "second"))

	got, err := s.Get(ctx, "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestStore_PerServerIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "http://one:8080", "session-one"))
	require.NoError(t, s.Save(ctx, "http://two:8080", "session-two"))

	got, err := s.Get(ctx, "http://one:8080")
	require.NoError(t, err)
	assert.Equal(t, "session-one", got)

	require.NoError(t, s.Delete(ctx, "http://one:8080"))

	_, err = s.Get(ctx, "http://one:8080")
	assert.ErrorIs(t, err, ErrNoSession)

	got, err = s.Get(ctx, "http://two:8080")
	require.NoError(t, err)
	assert.Equal(t, "session-two", got)
}

func TestStore_Delete_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	assert.NoError(t, s.Delete(ctx, "http://localhost:8080"))

	require.NoError(t, s.Save(ctx, "http://localhost:8080", "session-abc"))
	assert.NoError(t, s.Delete(ctx, "http://localhost:8080"))
	assert.NoError(t, s.Delete(ctx, "http://localhost:8080"))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "http://localhost:8080", "session-abc"))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "session-abc", got)
}
