package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// WrapText wraps text to fit within maxWidth cells, breaking on word
// boundaries when possible. Newlines in the input start new lines.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if lipgloss.Width(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}

	return result
}

// wrapLine wraps a single line that is too long
func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current strings.Builder
	width := 0

	flush := func() {
		if width > 0 {
			result = append(result, current.String())
			current.Reset()
			width = 0
		}
	}

	for _, word := range strings.FieldsFunc(line, unicode.IsSpace) {
		wordWidth := lipgloss.Width(word)

		// Words longer than a line are broken forcefully
		if wordWidth > maxWidth {
			flush()
			result = append(result, splitRunes(word, maxWidth)...)
			continue
		}

		needed := wordWidth
		if width > 0 {
			needed++
		}
		if width+needed > maxWidth {
			flush()
			needed = wordWidth
		}

		if width > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
		width += needed
	}
	flush()

	return result
}

// splitRunes cuts s into chunks of at most width cells
func splitRunes(s string, width int) []string {
	var chunks []string
	var current strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width && w > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			w = 0
		}
		current.WriteRune(r)
		w += rw
	}
	if w > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// clampLines keeps at most n lines, marking the last kept line with an
// ellipsis when something was cut.
func clampLines(lines []string, n, width int) []string {
	if len(lines) <= n {
		return lines
	}
	kept := append([]string(nil), lines[:n]...)
	last := []rune(kept[n-1])
	for len(last) > 0 && lipgloss.Width(string(last))+1 > width {
		last = last[:len(last)-1]
	}
	kept[n-1] = string(last) + "…"
	return kept
}
