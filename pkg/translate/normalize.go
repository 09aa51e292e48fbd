package translate

import (
	"strings"
	"unicode"
)

// Normalize cleans a model response for storage: tabs and newlines (the
// delimiters of downstream export formats) become spaces, remaining
// control characters are dropped, and whitespace runs collapse to one
// space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := false
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			r = ' '
		case unicode.IsControl(r):
			continue
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Invalid reports whether a normalized response carries no usable
// translation. Models occasionally answer with the literal strings
// "null" or "undefined"; those must not be stored as text.
func Invalid(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "undefined":
		return true
	}
	return false
}
