package prefetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiblet/pix/internal/gallery"
)

// pagedFetcher serves total items split into pages of size perPage.
type pagedFetcher struct {
	total   int
	perPage int
	failOn  int
	delay   time.Duration

	mu       sync.Mutex
	requests []int

	current atomic.Int32
	peak    atomic.Int32
}

func (f *pagedFetcher) Fetch(ctx context.Context, query string, page int) (gallery.Page, error) {
	f.mu.Lock()
	f.requests = append(f.requests, page)
	f.mu.Unlock()

	n := f.current.Add(1)
	defer f.current.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return gallery.Page{}, ctx.Err()
		}
	}

	if page == f.failOn {
		return gallery.Page{}, errors.New("upstream unavailable")
	}

	start := (page - 1) * f.perPage
	var items []gallery.Item
	for i := start; i < f.total && i < start+f.perPage; i++ {
		items = append(items, gallery.Item{ID: int64(i + 1)})
	}
	return gallery.Page{Items: items, TotalHits: f.total}, nil
}

func TestPages_FetchesInOrder(t *testing.T) {
	f := &pagedFetcher{total: 100, perPage: 12}

	pages, err := Pages(context.Background(), f, "fox", 3, 2)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	items := Flatten(pages)
	require.Len(t, items, 36)
	for i, item := range items {
		assert.Equal(t, int64(i+1), item.ID)
	}
}

func TestPages_StopsAtLastReachablePage(t *testing.T) {
	f := &pagedFetcher{total: 20, perPage: 12}

	pages, err := Pages(context.Background(), f, "fox", 5, 4)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Len(t, Flatten(pages), 20)
	assert.ElementsMatch(t, []int{1, 2}, f.requests)
}

func TestPages_SinglePageResult(t *testing.T) {
	tests := []struct {
		name  string
		total int
	}{
		{"no hits", 0},
		{"fits in one page", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &pagedFetcher{total: tt.total, perPage: 12}
			pages, err := Pages(context.Background(), f, "fox", 4, 2)
			require.NoError(t, err)
			assert.Len(t, pages, 1)
			assert.Equal(t, []int{1}, f.requests)
		})
	}
}

func TestPages_RespectsConcurrencyLimit(t *testing.T) {
	f := &pagedFetcher{total: 1000, perPage: 10, delay: 20 * time.Millisecond}

	_, err := Pages(context.Background(), f, "fox", 9, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, f.peak.Load(), int32(2))
	assert.Len(t, f.requests, 9)
}

func TestPages_ReturnsFirstError(t *testing.T) {
	f := &pagedFetcher{total: 100, perPage: 10, failOn: 3}

	pages, err := Pages(context.Background(), f, "fox", 5, 2)
	require.Error(t, err)
	assert.Nil(t, pages)
	assert.Contains(t, err.Error(), "page 3")
}

func TestPages_FirstPageFailure(t *testing.T) {
	f := &pagedFetcher{total: 100, perPage: 10, failOn: 1}

	_, err := Pages(context.Background(), f, "fox", 5, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 1")
	assert.Equal(t, []int{1}, f.requests)
}

func TestPages_ZeroPages(t *testing.T) {
	f := &pagedFetcher{total: 100, perPage: 10}

	pages, err := Pages(context.Background(), f, "fox", 0, 2)
	require.NoError(t, err)
	assert.Nil(t, pages)
	assert.Empty(t, f.requests)
}
