package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/pix/internal/history"
)

// SearchMsg represents messages that the search bar handles
type SearchMsg interface {
	isSearchMsg()
}

// StartSearchMsg focuses the bar, prefilled with Current. History lists
// earlier queries, newest first, for recall with up and down.
type StartSearchMsg struct {
	Current string
	History []string
}

func (StartSearchMsg) isSearchMsg() {}

type CancelSearchMsg struct{}

func (CancelSearchMsg) isSearchMsg() {}

type HistoryPrevMsg struct{}

func (HistoryPrevMsg) isSearchMsg() {}

type HistoryNextMsg struct{}

func (HistoryNextMsg) isSearchMsg() {}

// SearchModel holds the query bar state
type SearchModel struct {
	Input      textinput.Model
	History    []string
	HistoryPos int    // -1 while editing a fresh query
	draft      string // text typed before browsing history
}

// NewSearchModel creates an unfocused query bar
func NewSearchModel() SearchModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search images..."
	ti.CharLimit = history.MaxQueryLen

	return SearchModel{
		Input:      ti,
		HistoryPos: -1,
	}
}

// Update handles search bar messages
func (s *SearchModel) Update(msg SearchMsg) tea.Cmd {
	switch m := msg.(type) {
	case StartSearchMsg:
		s.History = m.History
		s.HistoryPos = -1
		s.draft = ""
		s.Input.SetValue(m.Current)
		s.Input.CursorEnd()
		return s.Input.Focus()
	case CancelSearchMsg:
		s.Input.Blur()
		s.HistoryPos = -1
	case HistoryPrevMsg:
		if s.HistoryPos+1 >= len(s.History) {
			return nil
		}
		if s.HistoryPos == -1 {
			s.draft = s.Input.Value()
		}
		s.HistoryPos++
		s.recall(s.History[s.HistoryPos])
	case HistoryNextMsg:
		switch {
		case s.HistoryPos < 0:
		case s.HistoryPos == 0:
			s.HistoryPos = -1
			s.recall(s.draft)
		default:
			s.HistoryPos--
			s.recall(s.History[s.HistoryPos])
		}
	}
	return nil
}

func (s *SearchModel) recall(value string) {
	s.Input.SetValue(value)
	s.Input.CursorEnd()
}

// HandleKey forwards an editing key to the text input
func (s *SearchModel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return cmd
}

// Submit blurs the bar and returns the trimmed query
func (s *SearchModel) Submit() string {
	s.Input.Blur()
	s.HistoryPos = -1
	return strings.TrimSpace(s.Input.Value())
}

// IsActive reports whether the bar has focus
func (s SearchModel) IsActive() bool {
	return s.Input.Focused()
}

// SearchView renders the query bar
func SearchView(s SearchModel) string {
	return s.Input.View()
}
