package history

import (
	"strings"
	"unicode"
)

// Truncate ensures s is at most maxLen runes. If truncation is needed the
// result ends in "...".
func Truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	// Reserve 3 runes for "..."
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	return string(runes[:maxLen-3]) + "..."
}

// Sanitize removes control characters and collapses whitespace so a query is
// safe to show on a single terminal line.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}
