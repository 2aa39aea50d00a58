package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yiblet/pix/internal/fetchcache"
	"github.com/yiblet/pix/internal/gallery"
	"github.com/yiblet/pix/internal/history"
	"github.com/yiblet/pix/internal/store/memstore"
)

// syntheticFetcher serves a fixed number of made-up images per query
type syntheticFetcher struct {
	total   int
	perPage int
	calls   int
}

func (f *syntheticFetcher) Fetch(ctx context.Context, query string, page int) (gallery.Page, error) {
	f.calls++
	if strings.TrimSpace(query) == "" {
		return gallery.Page{}, nil
	}
	var items []gallery.Item
	for id := (page-1)*f.perPage + 1; id <= min(page*f.perPage, f.total); id++ {
		items = append(items, gallery.Item{
			ID:            int64(id),
			Tags:          fmt.Sprintf("%s, sample %d", query, id),
			LargeImageURL: fmt.Sprintf("https://example.com/%d_1280.jpg", id),
		})
	}
	return gallery.Page{Items: items, TotalHits: f.total}, nil
}

func main() {
	fmt.Println("pix Gallery Controller Demo")

	ctx := context.Background()
	logger := zerolog.Nop()

	store := memstore.NewMemoryStore()
	defer store.Close()

	upstream := &syntheticFetcher{total: 7, perPage: 3}
	fetcher := fetchcache.New(upstream, store.Pages(), time.Hour, logger)
	hist := history.NewManager(store.History(), 10)

	notifier := gallery.NotifierFunc(func(message string, level gallery.Level) {
		fmt.Printf("  [%s] %s\n", level, message)
	})
	controller := gallery.NewController(fetcher, notifier, logger)

	show := func(step string) {
		state := controller.State()
		fmt.Printf("%s: query=%q page=%d items=%d/%d load-more=%v\n",
			step, state.Query, state.Page, state.Len(), state.TotalCount, state.ShowLoadMore())
	}

	for _, q := range []string{"mountains", "lake"} {
		if _, err := hist.Record(q); err != nil {
			log.Fatalf("Failed to record query: %v", err)
		}
	}

	controller.SubmitQuery(ctx, "lake")
	show("Submit")

	for !controller.State().Exhausted() {
		controller.LoadMore(ctx)
		show("Load more")
	}

	fmt.Println("Load more past the end:")
	controller.LoadMore(ctx)

	fmt.Println("Empty query:")
	controller.SubmitQuery(ctx, "")
	show("Submit")

	controller.SubmitQuery(ctx, "lake")
	show("Submit again (cached)")

	state := controller.State()
	controller.SelectItem(state.Items[1])
	fmt.Printf("Selected image #%d: %s\n", controller.State().Selection.ID, controller.State().Selection.LargeImageURL)
	controller.SelectItem(state.Items[1])
	fmt.Printf("Selecting it again closes the overlay: %v\n", !controller.State().OverlayVisible())

	queries, err := hist.Queries()
	if err != nil {
		log.Fatalf("Failed to list history: %v", err)
	}
	fmt.Printf("\nRecent searches (newest first): %v\n", queries)
	fmt.Printf("Upstream requests: %d\n", upstream.calls)

	fmt.Printf("\nDemo complete! (Using in-memory store)\n")
}
