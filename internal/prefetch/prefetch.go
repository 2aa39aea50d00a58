// Package prefetch fetches several result pages of one query concurrently.
package prefetch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yiblet/pix/internal/gallery"
)

// DefaultConcurrency bounds parallel requests when no limit is given.
const DefaultConcurrency = 4

// Pages fetches pages 1..n of query and returns them in page order.
//
// Page 1 is fetched first; its total and page size decide how many pages
// actually exist, so no request is made past the last reachable page. The
// remaining pages run with at most limit requests in flight. The first error
// cancels the rest and is returned.
func Pages(ctx context.Context, fetcher gallery.Fetcher, query string, n, limit int) ([]gallery.Page, error) {
	if n < 1 {
		return nil, nil
	}
	if limit < 1 {
		limit = DefaultConcurrency
	}

	first, err := fetcher.Fetch(ctx, query, 1)
	if err != nil {
		return nil, fmt.Errorf("page 1: %w", err)
	}

	n = min(n, reachable(first))
	pages := make([]gallery.Page, n)
	pages[0] = first
	if n == 1 {
		return pages, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := 1; i < n; i++ {
		page := i + 1
		g.Go(func() error {
			p, err := fetcher.Fetch(ctx, query, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			pages[page-1] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// reachable returns how many pages the backend can serve, judged from page 1.
func reachable(first gallery.Page) int {
	size := len(first.Items)
	if size == 0 || first.TotalHits <= size {
		return 1
	}
	return (first.TotalHits + size - 1) / size
}

// Flatten concatenates the items of pages in order.
func Flatten(pages []gallery.Page) []gallery.Item {
	var items []gallery.Item
	for _, p := range pages {
		items = append(items, p.Items...)
	}
	return items
}
