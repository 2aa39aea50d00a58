package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/pix/internal/gallery"
)

// noticeMsg carries a controller notification into the bubbletea loop.
type noticeMsg struct {
	Message string
	Level   gallery.Level
}

func (noticeMsg) isAppMsg() {}

// ChannelNotifier implements gallery.Notifier by queueing notices for the
// TUI. Notify never blocks; notices beyond the buffer are dropped.
type ChannelNotifier struct {
	ch chan noticeMsg
}

var _ gallery.Notifier = (*ChannelNotifier)(nil)

// NewChannelNotifier creates a notifier holding up to size pending notices.
func NewChannelNotifier(size int) *ChannelNotifier {
	if size < 1 {
		size = 1
	}
	return &ChannelNotifier{ch: make(chan noticeMsg, size)}
}

// Notify queues a notice.
func (n *ChannelNotifier) Notify(message string, level gallery.Level) {
	select {
	case n.ch <- noticeMsg{Message: message, Level: level}:
	default:
	}
}

// Wait returns a command that delivers the next notice.
func (n *ChannelNotifier) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-n.ch
	}
}
