package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "chambers/pkg/domain-errors"
)

func TestParseArticleID(t *testing.T) {
	raw := uuid.New()

	id, err := ParseArticleID(raw.String())
	require.NoError(t, err)
	assert.Equal(t, raw.String(), id.String())
}

func TestParseArticleIDInvalid(t *testing.T) {
	_, err := ParseArticleID("not-a-uuid")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestParseIdentityID(t *testing.T) {
	t.Run("accepts opaque provider IDs", func(t *testing.T) {
		id, err := ParseIdentityID("auth0|someone")
		require.NoError(t, err)
		assert.Equal(t, "auth0|someone", id.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseIdentityID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestNewIDsAreDistinct(t *testing.T) {
	assert.NotEqual(t, NewArticleID().String(), NewArticleID().String())
}
