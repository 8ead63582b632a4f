package crypto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	token := NewToken()
	require.NotEmpty(t, token)

	// Canonical UUID text form.
	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestNewToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		token := NewToken()
		assert.False(t, seen[token], "duplicate token %q", token)
		seen[token] = true
	}
}
