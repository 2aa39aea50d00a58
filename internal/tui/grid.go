package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/pix/internal/gallery"
)

const (
	cardWidth  = 26 // outer width including border
	cardHeight = 6  // outer height including border
	tagLines   = 2
)

// GridMsg represents messages that the grid component handles
type GridMsg interface {
	isGridMsg()
}

// MoveCursorMsg moves the cursor by Delta cards, clamped to Count items.
type MoveCursorMsg struct {
	Delta int
	Count int
}

func (MoveCursorMsg) isGridMsg() {}

type MoveRowMsg struct {
	Rows  int
	Count int
}

func (MoveRowMsg) isGridMsg() {}

type GoToTopMsg struct{}

func (GoToTopMsg) isGridMsg() {}

type GoToBottomMsg struct {
	Count int
}

func (GoToBottomMsg) isGridMsg() {}

// ClampCursorMsg keeps the cursor inside a result set of Count items.
type ClampCursorMsg struct {
	Count int
}

func (ClampCursorMsg) isGridMsg() {}

type ResizeGridMsg struct {
	Width  int
	Height int
}

func (ResizeGridMsg) isGridMsg() {}

// GridModel holds the cursor and scroll position of the result grid
type GridModel struct {
	Cursor int // index of the focused card
	Offset int // first visible row
	Width  int
	Height int
}

// NewGridModel creates a grid with the cursor on the first card
func NewGridModel(width, height int) GridModel {
	return GridModel{Width: width, Height: height}
}

// Columns returns how many cards fit side by side
func (g GridModel) Columns() int {
	return max(g.Width/cardWidth, 1)
}

// VisibleRows returns how many card rows fit on screen
func (g GridModel) VisibleRows() int {
	return max(g.Height/cardHeight, 1)
}

// Update applies a grid message
func (g *GridModel) Update(msg GridMsg) {
	switch m := msg.(type) {
	case MoveCursorMsg:
		g.setCursor(g.Cursor+m.Delta, m.Count)
	case MoveRowMsg:
		target := g.Cursor + m.Rows*g.Columns()
		// Moving down from a partial last row lands on the last card
		if m.Rows > 0 && target >= m.Count && g.Cursor/g.Columns() < (m.Count-1)/g.Columns() {
			target = m.Count - 1
		}
		if target >= 0 && target < m.Count {
			g.setCursor(target, m.Count)
		}
	case GoToTopMsg:
		g.Cursor = 0
		g.Offset = 0
	case GoToBottomMsg:
		g.setCursor(m.Count-1, m.Count)
	case ClampCursorMsg:
		g.setCursor(g.Cursor, m.Count)
	case ResizeGridMsg:
		g.Width = m.Width
		g.Height = m.Height
		g.scroll()
	}
}

func (g *GridModel) setCursor(index, count int) {
	if count <= 0 {
		g.Cursor = 0
		g.Offset = 0
		return
	}
	g.Cursor = min(max(index, 0), count-1)
	g.scroll()
}

// scroll keeps the cursor row on screen
func (g *GridModel) scroll() {
	row := g.Cursor / g.Columns()
	visible := g.VisibleRows()
	if row < g.Offset {
		g.Offset = row
	}
	if row >= g.Offset+visible {
		g.Offset = row - visible + 1
	}
}

// GridView renders the visible rows of cards (pure function)
func GridView(model GridModel, items []gallery.Item, selected *gallery.Item) string {
	if len(items) == 0 {
		return lipgloss.NewStyle().
			Width(model.Width).
			Height(model.Height).
			Foreground(lipgloss.Color("241")).
			Render("No images yet. Press / to search.")
	}

	cols := model.Columns()
	first := model.Offset * cols
	last := min(first+model.VisibleRows()*cols, len(items))

	var rows []string
	for start := first; start < last; start += cols {
		end := min(start+cols, last)
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			isSelected := selected != nil && selected.ID == items[i].ID
			cards = append(cards, renderCard(items[i], i == model.Cursor, isSelected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.NewStyle().
		Width(model.Width).
		Height(model.Height).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderCard draws one result as a bordered card
func renderCard(item gallery.Item, focused, selected bool) string {
	inner := cardWidth - 4 // border and padding

	borderColor := "62"
	if selected {
		borderColor = "10"
	}
	if focused {
		borderColor = "205"
	}

	title := fmt.Sprintf("#%d", item.ID)
	if selected {
		title += " *"
	}

	tags := WrapText(item.Tags, inner)
	tags = clampLines(tags, tagLines, inner)
	for len(tags) < tagLines {
		tags = append(tags, "")
	}

	size := ""
	if item.Width > 0 && item.Height > 0 {
		size = fmt.Sprintf("%dx%d", item.Width, item.Height)
	}

	body := strings.Join(append(append([]string{lipgloss.NewStyle().Bold(true).Render(title)}, tags...), size), "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(cardWidth - 2).
		Render(body)
}
