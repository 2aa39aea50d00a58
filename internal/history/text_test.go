package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "fox", "fox"},
		{"collapses whitespace", "  red \t  fox  ", "red fox"},
		{"newlines", "red\nfox\r\n", "red fox"},
		{"control characters", "red\x00fox\x1b", "red fox"},
		{"blank", " \t\n ", ""},
		{"unicode kept", "renard  roux ü", "renard roux ü"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "fox", 10, "fox"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdefghij", 6, "abc..."},
		{"multibyte", "üüüüüü", 5, "üü..."},
		{"tiny limit", "abcdef", 2, ".."},
		{"trims", "  fox  ", 3, "fox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxLen))
		})
	}
}
