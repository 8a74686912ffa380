package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	t.Run("uses message when present", func(t *testing.T) {
		err := New(CodeNotFound, "article not found")
		assert.Equal(t, "article not found", err.Error())
	})

	t.Run("falls back to code", func(t *testing.T) {
		err := &Error{Code: CodeInternal}
		assert.Equal(t, "internal_error", err.Error())
	})
}

func TestWrapPreservesCode(t *testing.T) {
	inner := New(CodeUnauthorized, "no session")
	wrapped := Wrap(inner, CodeInternal, "resolve failed")

	assert.True(t, HasCode(wrapped, CodeUnauthorized))
	assert.False(t, HasCode(wrapped, CodeInternal))
	assert.ErrorIs(t, wrapped, inner)
}

func TestWrapPlainError(t *testing.T) {
	inner := errors.New("connection refused")
	wrapped := Wrap(inner, CodeUnavailable, "repository unreachable")

	require.True(t, HasCode(wrapped, CodeUnavailable))
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "repository unreachable", wrapped.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeTimeout, "role lookup timed out"))
	assert.ErrorIs(t, err, New(CodeTimeout, "different message"))
	assert.NotErrorIs(t, err, New(CodeNotFound, ""))
}
