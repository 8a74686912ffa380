// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxLength = 96

// Make lowercases the input, collapses anything that is not a letter or
// digit into single hyphens, and trims the result to a stable length.
// Returns "" for input with no usable characters; callers decide whether
// that is an error.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > maxLength {
		// Cut on a rune boundary so multibyte slugs stay valid UTF-8.
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.Trim(out[:cut], "-")
	}
	return out
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	return s != "" && s == Make(s)
}
