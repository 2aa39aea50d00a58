// Package fetchcache wraps a gallery.Fetcher with a read-through page cache.
package fetchcache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/yiblet/pix/internal/gallery"
	"github.com/yiblet/pix/internal/store"
)

// DefaultTTL is how long a cached page is served before refetching.
const DefaultTTL = time.Hour

// Keyer is implemented by fetchers whose pages depend on settings beyond the
// query and page number, such as page size or content filters.
type Keyer interface {
	CacheKey() string
}

// CachedFetcher serves pages from a store.PageStore and falls back to the
// wrapped Fetcher on a miss. Pages are keyed by the wrapped fetcher's
// CacheKey as well as query and page, so changed settings never mix cached
// pages with fresh ones. Pages with zero hits are never cached. Storage
// failures are logged and never fail a fetch.
type CachedFetcher struct {
	next   gallery.Fetcher
	pages  store.PageStore
	params string
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

var _ gallery.Fetcher = (*CachedFetcher)(nil)

// New wraps next. A ttl of zero or less uses DefaultTTL.
func New(next gallery.Fetcher, pages store.PageStore, ttl time.Duration, logger zerolog.Logger) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	var params string
	if k, ok := next.(Keyer); ok {
		params = k.CacheKey()
	}
	return &CachedFetcher{
		next:   next,
		pages:  pages,
		params: params,
		ttl:    ttl,
		logger: logger.With().Str("component", "fetchcache").Logger(),
		now:    time.Now,
	}
}

// Fetch implements gallery.Fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, query string, page int) (gallery.Page, error) {
	if cached, ok := c.lookup(query, page); ok {
		return cached, nil
	}

	result, err := c.next.Fetch(ctx, query, page)
	if err != nil {
		return gallery.Page{}, err
	}

	if result.TotalHits > 0 {
		c.store(query, page, result)
	}
	return result, nil
}

// Prune removes every page older than the TTL.
func (c *CachedFetcher) Prune() (int, error) {
	return c.pages.DeleteOlderThan(c.now().Add(-c.ttl))
}

func (c *CachedFetcher) lookup(query string, page int) (gallery.Page, bool) {
	cached, err := c.pages.Get(c.params, query, page)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn().Err(err).Str("query", query).Int("page", page).Msg("Cache read failed")
		}
		return gallery.Page{}, false
	}

	if c.now().Sub(cached.FetchedAt) >= c.ttl {
		c.logger.Debug().Str("query", query).Int("page", page).Msg("Cached page expired")
		return gallery.Page{}, false
	}

	c.logger.Debug().Str("query", query).Int("page", page).Msg("Serving page from cache")
	return ToPage(cached), true
}

func (c *CachedFetcher) store(query string, page int, result gallery.Page) {
	entry := FromPage(query, page, result)
	entry.Params = c.params
	entry.FetchedAt = c.now()
	if err := c.pages.Put(entry); err != nil {
		c.logger.Warn().Err(err).Str("query", query).Int("page", page).Msg("Cache write failed")
	}
}

// ToPage converts a cached page into a gallery.Page.
func ToPage(cached *store.CachedPage) gallery.Page {
	items := make([]gallery.Item, len(cached.Images))
	for i, img := range cached.Images {
		items[i] = gallery.Item{
			ID:            img.ID,
			ThumbnailURL:  img.ThumbnailURL,
			LargeImageURL: img.LargeImageURL,
			Tags:          img.Tags,
			PageURL:       img.PageURL,
			User:          img.User,
			Width:         img.Width,
			Height:        img.Height,
		}
	}
	return gallery.Page{Items: items, TotalHits: cached.TotalHits}
}

// FromPage converts a gallery.Page into a storable page.
func FromPage(query string, page int, p gallery.Page) *store.CachedPage {
	images := make([]store.Image, len(p.Items))
	for i, item := range p.Items {
		images[i] = store.Image{
			ID:            item.ID,
			ThumbnailURL:  item.ThumbnailURL,
			LargeImageURL: item.LargeImageURL,
			Tags:          item.Tags,
			PageURL:       item.PageURL,
			User:          item.User,
			Width:         item.Width,
			Height:        item.Height,
		}
	}
	return &store.CachedPage{
		Query:     query,
		Page:      page,
		TotalHits: p.TotalHits,
		Images:    images,
	}
}
