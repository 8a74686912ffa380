package slug

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Corporate Law Update", "corporate-law-update"},
		{"punctuation collapsed", "M&A: What's New in 2025?", "m-a-what-s-new-in-2025"},
		{"leading and trailing noise", "  --Hello World--  ", "hello-world"},
		{"unicode letters kept", "Öffentliches Recht", "öffentliches-recht"},
		{"empty", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMakeCapsLength(t *testing.T) {
	long := strings.Repeat("verylongword ", 30)
	got := Make(long)
	assert.LessOrEqual(t, len(got), maxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestMakeCapsLengthOnRuneBoundary(t *testing.T) {
	long := "a" + strings.Repeat("é", 100)
	got := Make(long)
	assert.LessOrEqual(t, len(got), maxLength)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, Valid(got))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("corporate-law-update"))
	assert.False(t, Valid("Corporate Law"))
	assert.False(t, Valid(""))
}
