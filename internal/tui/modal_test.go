package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/pix/internal/gallery"
)

func TestModalModel_ShowHide(t *testing.T) {
	modal := NewModalModel()
	if modal.Active {
		t.Fatal("Expected modal to start hidden")
	}

	modal.Update(ShowModalMsg{Title: "T", Content: "C", Options: "O"})
	if !modal.Active || modal.Title != "T" || modal.Content != "C" || modal.Options != "O" {
		t.Errorf("Expected modal populated, got %+v", modal)
	}

	modal.Update(HideModalMsg{})
	if modal.Active || modal.Title != "" || modal.Content != "" {
		t.Errorf("Expected modal cleared, got %+v", modal)
	}
}

func TestShowImageDetails(t *testing.T) {
	item := gallery.Item{
		ID:            195893,
		Tags:          "fox, red fox, animal",
		LargeImageURL: "https://pixabay.com/get/195893_1280.jpg",
		PageURL:       "https://pixabay.com/photos/fox-195893/",
		User:          "Erik",
		Width:         4000,
		Height:        2250,
	}

	msg := ShowImageDetails(item)

	if msg.Title != "Image #195893" {
		t.Errorf("Expected title 'Image #195893', got %q", msg.Title)
	}
	for _, want := range []string{"fox, red fox, animal", "4000x2250", "Erik", item.LargeImageURL, item.PageURL} {
		if !strings.Contains(msg.Content, want) {
			t.Errorf("Expected content to contain %q, got %q", want, msg.Content)
		}
	}
	if !strings.Contains(msg.Options, "copy URL") {
		t.Errorf("Expected copy hint in options, got %q", msg.Options)
	}
}

func TestShowImageDetails_SparseItem(t *testing.T) {
	msg := ShowImageDetails(gallery.Item{ID: 1, LargeImageURL: "https://example.com/1.jpg"})

	if strings.Contains(msg.Content, "Tags:") || strings.Contains(msg.Content, "Size:") || strings.Contains(msg.Content, "Page:") {
		t.Errorf("Expected empty fields omitted, got %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "https://example.com/1.jpg") {
		t.Errorf("Expected large URL, got %q", msg.Content)
	}
}

func TestModalView_Inactive(t *testing.T) {
	bg := "line one\nline two"

	if got := ModalView(NewModalModel(), bg, 80, 24); got != bg {
		t.Errorf("Expected background unchanged, got %q", got)
	}
}

func TestModalView_Overlay(t *testing.T) {
	bgLine := strings.Repeat(".", 80)
	bg := strings.TrimSuffix(strings.Repeat(bgLine+"\n", 24), "\n")

	modal := NewModalModel()
	modal.Update(ShowImageDetails(gallery.Item{ID: 42, LargeImageURL: "https://example.com/42.jpg"}))

	view := ModalView(modal, bg, 80, 24)
	lines := strings.Split(view, "\n")

	if len(lines) != 24 {
		t.Errorf("Expected 24 lines, got %d", len(lines))
	}
	if !strings.Contains(view, "Image #42") {
		t.Error("Expected modal title in view")
	}
	if lines[0] != bgLine {
		t.Errorf("Expected first line untouched, got %q", lines[0])
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 80 {
			t.Errorf("Line %d: expected width 80, got %d", i, w)
		}
	}
}

func TestModalView_NarrowWindow(t *testing.T) {
	modal := NewModalModel()
	modal.Update(ShowImageDetails(gallery.Item{ID: 1, Tags: strings.Repeat("tag ", 40)}))

	view := ModalView(modal, "", 40, 20)

	for i, line := range strings.Split(view, "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("Line %d exceeds window width: %d", i, w)
		}
	}
}

func TestTruncateVisualWidth(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("hello") + " world"

	before := truncateToVisualWidth(styled, 3)
	if lipgloss.Width(before) != 3 {
		t.Errorf("Expected width 3, got %d (%q)", lipgloss.Width(before), before)
	}

	after := truncateFromVisualWidth("hello world", 6)
	if after != "world" {
		t.Errorf("Expected 'world', got %q", after)
	}

	if got := truncateToVisualWidth("日本語", 3); got != "日" {
		t.Errorf("Expected wide rune cut at width 3, got %q", got)
	}
	if got := truncateFromVisualWidth("ab", 5); got != "" {
		t.Errorf("Expected empty tail, got %q", got)
	}
}
