package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/pix/internal/gallery"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state of the overlay dialog
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
}

// NewModalModel creates a hidden modal
func NewModalModel() ModalModel {
	return ModalModel{Width: 64}
}

// Update handles modal messages
func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		m.Active = false
		m.Title = ""
		m.Content = ""
		m.Options = ""
	}
}

// ShowImageDetails builds the overlay for an opened image
func ShowImageDetails(item gallery.Item) ShowModalMsg {
	var b strings.Builder
	if item.Tags != "" {
		fmt.Fprintf(&b, "Tags:   %s\n", item.Tags)
	}
	if item.Width > 0 && item.Height > 0 {
		fmt.Fprintf(&b, "Size:   %dx%d\n", item.Width, item.Height)
	}
	if item.User != "" {
		fmt.Fprintf(&b, "By:     %s\n", item.User)
	}
	fmt.Fprintf(&b, "Large:  %s", item.LargeImageURL)
	if item.PageURL != "" {
		fmt.Fprintf(&b, "\nPage:   %s", item.PageURL)
	}

	return ShowModalMsg{
		Title:   fmt.Sprintf("Image #%d", item.ID),
		Content: b.String(),
		Options: "[enter/esc] close    [c] copy URL",
	}
}

// ModalView draws the modal centred over backgroundView
func ModalView(model ModalModel, backgroundView string, windowWidth, windowHeight int) string {
	if !model.Active {
		return backgroundView
	}

	modalWidth := min(model.Width, windowWidth-4)
	textWidth := max(modalWidth-4, 1)

	lines := []string{lipgloss.NewStyle().Bold(true).Render(model.Title), ""}
	for _, line := range strings.Split(model.Content, "\n") {
		lines = append(lines, WrapText(line, textWidth)...)
	}
	if model.Options != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(model.Options))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(1, 2).
		Width(modalWidth).
		Render(strings.Join(lines, "\n"))

	return overlay(backgroundView, modal, windowWidth, windowHeight)
}

// overlay places fg centred on bg, keeping bg visible around it
func overlay(bg, fg string, windowWidth, windowHeight int) string {
	backgroundLines := strings.Split(bg, "\n")
	modalLines := strings.Split(fg, "\n")

	startY := max((windowHeight-len(modalLines))/2, 0)
	startX := max((windowWidth-lipgloss.Width(modalLines[0]))/2, 0)

	for len(backgroundLines) < startY+len(modalLines) {
		backgroundLines = append(backgroundLines, "")
	}

	var result strings.Builder
	for i, bgLine := range backgroundLines {
		if i > 0 {
			result.WriteString("\n")
		}

		idx := i - startY
		if idx < 0 || idx >= len(modalLines) {
			result.WriteString(bgLine)
			continue
		}

		line := modalLines[idx]
		bgWidth := lipgloss.Width(bgLine)
		if startX > 0 {
			before := truncateToVisualWidth(bgLine, startX)
			result.WriteString(before)
			// Pad short background lines so the modal stays centred
			result.WriteString(strings.Repeat(" ", max(startX-lipgloss.Width(before), 0)))
		}
		result.WriteString(line)
		if endX := startX + lipgloss.Width(line); endX < bgWidth {
			result.WriteString(truncateFromVisualWidth(bgLine, endX))
		}
	}

	return result.String()
}

// truncateToVisualWidth truncates a styled string to the specified visual width
func truncateToVisualWidth(s string, targetWidth int) string {
	if targetWidth <= 0 {
		return ""
	}

	currentWidth := 0
	runes := []rune(s)
	inEscape := false
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		// Track ANSI escape sequences (they don't count toward visual width)
		if r == '\x1b' {
			inEscape = true
		}

		if inEscape {
			result.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
			continue
		}

		rw := lipgloss.Width(string(r))
		if currentWidth+rw > targetWidth {
			break
		}

		result.WriteRune(r)
		currentWidth += rw
	}

	return result.String()
}

// truncateFromVisualWidth returns the portion of a styled string starting from the specified visual position
func truncateFromVisualWidth(s string, startWidth int) string {
	if startWidth <= 0 {
		return s
	}

	currentWidth := 0
	runes := []rune(s)
	inEscape := false
	startIdx := -1
	var pendingEscapes strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		// Track ANSI escape sequences
		if r == '\x1b' {
			inEscape = true
			if startIdx < 0 {
				pendingEscapes.WriteRune(r)
			}
		} else if inEscape {
			if startIdx < 0 {
				pendingEscapes.WriteRune(r)
			}
			if r == 'm' {
				inEscape = false
			}
		} else {
			// A wide rune straddling startWidth is dropped
			if currentWidth >= startWidth && startIdx < 0 {
				startIdx = i
			}
			currentWidth += lipgloss.Width(string(r))
		}
	}

	if startIdx < 0 {
		// Start width is beyond the string
		return ""
	}

	// Include any pending escape codes that were before the start
	return pendingEscapes.String() + string(runes[startIdx:])
}
