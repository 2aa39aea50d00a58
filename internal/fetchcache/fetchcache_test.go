package fetchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiblet/pix/internal/gallery"
	"github.com/yiblet/pix/internal/pixabay"
	"github.com/yiblet/pix/internal/store"
	"github.com/yiblet/pix/internal/store/memstore"
)

type countingFetcher struct {
	calls int
	page  gallery.Page
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, query string, page int) (gallery.Page, error) {
	f.calls++
	return f.page, f.err
}

type brokenPages struct {
	store.PageStore
}

func (brokenPages) Get(string, string, int) (*store.CachedPage, error) {
	return nil, errors.New("disk gone")
}
func (brokenPages) Put(*store.CachedPage) error { return errors.New("disk gone") }

var _ Keyer = (*pixabay.Client)(nil)

// keyedFetcher is a countingFetcher with request settings
type keyedFetcher struct {
	countingFetcher
	key string
}

func (f *keyedFetcher) CacheKey() string { return f.key }

func foxPage() gallery.Page {
	return gallery.Page{
		TotalHits: 24,
		Items: []gallery.Item{
			{ID: 1, ThumbnailURL: "t1", LargeImageURL: "l1", Tags: "fox", Width: 640, Height: 480},
			{ID: 2, ThumbnailURL: "t2", LargeImageURL: "l2", Tags: "red fox", User: "erik"},
		},
	}
}

func newFixture(t *testing.T, ttl time.Duration) (*CachedFetcher, *countingFetcher, *time.Time) {
	t.Helper()
	upstream := &countingFetcher{page: foxPage()}
	cf := New(upstream, memstore.NewMemoryStore().Pages(), ttl, zerolog.Nop())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cf.now = func() time.Time { return now }
	return cf, upstream, &now
}

func TestCachedFetcher_ServesFromCache(t *testing.T) {
	cf, upstream, _ := newFixture(t, time.Hour)
	ctx := context.Background()

	first, err := cf.Fetch(ctx, "fox", 1)
	require.NoError(t, err)
	second, err := cf.Fetch(ctx, "fox", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, first, second)
}

func TestCachedFetcher_KeysByQueryAndPage(t *testing.T) {
	cf, upstream, _ := newFixture(t, time.Hour)
	ctx := context.Background()

	_, _ = cf.Fetch(ctx, "fox", 1)
	_, _ = cf.Fetch(ctx, "fox", 2)
	_, _ = cf.Fetch(ctx, "Fox", 1)

	assert.Equal(t, 3, upstream.calls)
}

func TestCachedFetcher_Expiry(t *testing.T) {
	cf, upstream, now := newFixture(t, time.Hour)
	ctx := context.Background()

	_, _ = cf.Fetch(ctx, "fox", 1)
	*now = now.Add(59 * time.Minute)
	_, _ = cf.Fetch(ctx, "fox", 1)
	assert.Equal(t, 1, upstream.calls)

	*now = now.Add(2 * time.Minute)
	_, _ = cf.Fetch(ctx, "fox", 1)
	assert.Equal(t, 2, upstream.calls)
}

func TestCachedFetcher_ZeroHitsNotCached(t *testing.T) {
	cf, upstream, _ := newFixture(t, time.Hour)
	upstream.page = gallery.Page{}
	ctx := context.Background()

	_, _ = cf.Fetch(ctx, "qwxz", 1)
	_, _ = cf.Fetch(ctx, "qwxz", 1)

	assert.Equal(t, 2, upstream.calls)
}

func TestCachedFetcher_ErrorsPassThrough(t *testing.T) {
	cf, upstream, _ := newFixture(t, time.Hour)
	upstream.err = errors.New("boom")

	_, err := cf.Fetch(context.Background(), "fox", 1)
	assert.EqualError(t, err, "boom")

	count, err := cf.pages.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCachedFetcher_StoreFailuresAreIgnored(t *testing.T) {
	upstream := &countingFetcher{page: foxPage()}
	cf := New(upstream, brokenPages{}, 0, zerolog.Nop())
	assert.Equal(t, DefaultTTL, cf.ttl)

	page, err := cf.Fetch(context.Background(), "fox", 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 1, upstream.calls)
}

func TestCachedFetcher_Prune(t *testing.T) {
	cf, _, now := newFixture(t, time.Hour)
	ctx := context.Background()

	_, _ = cf.Fetch(ctx, "fox", 1)
	*now = now.Add(30 * time.Minute)
	_, _ = cf.Fetch(ctx, "fox", 2)
	*now = now.Add(45 * time.Minute)

	removed, err := cf.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, _ := cf.pages.Count()
	assert.Equal(t, 1, count)
}

func TestPageConversion(t *testing.T) {
	original := foxPage()
	cached := FromPage("fox", 3, original)

	assert.Equal(t, "fox", cached.Query)
	assert.Equal(t, 3, cached.Page)
	assert.Equal(t, 24, cached.TotalHits)
	assert.Equal(t, original, ToPage(cached))
}

func TestCachedFetcher_KeysBySettings(t *testing.T) {
	pages := memstore.NewMemoryStore().Pages()
	ctx := context.Background()

	small := &keyedFetcher{countingFetcher: countingFetcher{page: foxPage()}, key: "per_page=3"}
	large := &keyedFetcher{countingFetcher: countingFetcher{page: foxPage()}, key: "per_page=5"}
	smallCache := New(small, pages, time.Hour, zerolog.Nop())
	largeCache := New(large, pages, time.Hour, zerolog.Nop())

	_, err := smallCache.Fetch(ctx, "fox", 1)
	require.NoError(t, err)
	_, err = largeCache.Fetch(ctx, "fox", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, large.calls, "page cached under other settings must not be served")

	_, err = smallCache.Fetch(ctx, "fox", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, small.calls)

	cached, err := pages.Get("per_page=5", "fox", 1)
	require.NoError(t, err)
	assert.Equal(t, "per_page=5", cached.Params)
}

// numberedAPI serves images 1..total, per_page at a time
func numberedAPI(t *testing.T, total int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))

		hits := []map[string]any{}
		for id := (page-1)*perPage + 1; id <= min(page*perPage, total); id++ {
			hits = append(hits, map[string]any{
				"id":            id,
				"largeImageURL": fmt.Sprintf("https://img.test/%d_1280.jpg", id),
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"total": total, "totalHits": total, "hits": hits})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCachedFetcher_PageSizeChangeKeepsIDsUnique(t *testing.T) {
	server := numberedAPI(t, 40)
	pages := memstore.NewMemoryStore().Pages()
	ctx := context.Background()

	session := func(perPage int) *gallery.Controller {
		client, err := pixabay.NewClient("k", zerolog.Nop(), pixabay.WithBaseURL(server.URL), pixabay.WithPerPage(perPage))
		require.NoError(t, err)
		return gallery.NewController(New(client, pages, time.Hour, zerolog.Nop()), nil, zerolog.Nop())
	}

	first := session(20)
	first.SubmitQuery(ctx, "fox")
	require.Equal(t, 20, first.State().Len())

	second := session(12)
	second.SubmitQuery(ctx, "fox")
	second.LoadMore(ctx)

	state := second.State()
	require.Equal(t, 24, state.Len())
	seen := make(map[int64]bool)
	for i, item := range state.Items {
		assert.False(t, seen[item.ID], "duplicate id %d", item.ID)
		seen[item.ID] = true
		assert.Equal(t, int64(i+1), item.ID)
	}
}
