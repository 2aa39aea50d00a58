package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/yiblet/pix/internal/gallery"
	"github.com/yiblet/pix/internal/tui"
)

const (
	width  = 120
	height = 30
)

func main() {
	fmt.Println("Testing TUI grid layout")
	fmt.Println("=======================")

	ctx := context.Background()
	fetcher := gallery.FetcherFunc(func(ctx context.Context, query string, page int) (gallery.Page, error) {
		items := make([]gallery.Item, 12)
		for i := range items {
			id := (page-1)*len(items) + i + 1
			items[i] = gallery.Item{
				ID:     int64(id),
				Tags:   fmt.Sprintf("%s, wildlife, nature photography, sample %d", query, id),
				Width:  1920,
				Height: 1080,
			}
		}
		return gallery.Page{Items: items, TotalHits: 40}, nil
	})

	notices := tui.NewChannelNotifier(4)
	controller := gallery.NewController(fetcher, notices, zerolog.Nop())
	controller.SubmitQuery(ctx, "fox")

	model := tui.NewAppModel(ctx, controller, notices)
	model.Update(tea.WindowSizeMsg{Width: width, Height: height})

	lines := strings.Split(model.View(), "\n")
	fmt.Printf("Rendered view (%d lines):\n", len(lines))
	fmt.Println(strings.Repeat("=", width))
	for i, line := range lines {
		fmt.Printf("Line %2d: %s\n", i, line)
	}
	fmt.Println(strings.Repeat("=", width))

	failures := 0
	for i, line := range lines {
		if w := lipgloss.Width(line); w > width {
			fmt.Printf("Line %d is %d cells wide (max %d)\n", i, w, width)
			failures++
		}
	}
	if len(lines) > height {
		fmt.Printf("View has %d lines (max %d)\n", len(lines), height)
		failures++
	}

	// Every visible card row should show the same number of left borders
	cols := model.Grid.Columns()
	for i, line := range lines {
		if strings.Count(line, "╭") > 0 && strings.Count(line, "╭") != cols {
			fmt.Printf("Line %d: expected %d card tops, found %d\n", i, cols, strings.Count(line, "╭"))
			failures++
		}
	}

	if failures > 0 {
		log.Fatalf("%d layout problem(s) found", failures)
	}
	fmt.Println("\nGrid layout verification complete!")
}
