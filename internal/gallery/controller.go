package gallery

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Controller coordinates query changes, paginated fetches, loading state and
// the overlay selection. All methods are safe for concurrent use; fetching
// methods block until the Fetcher settles.
//
// Every query change bumps a generation counter. A fetch remembers the
// generation it was launched under and its result is dropped if a newer query
// was submitted in the meantime, so the last submitted query always wins.
type Controller struct {
	fetcher  Fetcher
	notifier Notifier
	logger   zerolog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	inflight   int // all fetches, stale ones included
	active     int // fetches launched under the current generation
}

// ticket describes a launched fetch.
type ticket struct {
	generation uint64
	query      string
	page       int
	mode       mode
}

// notice is a notification decided under the lock and delivered after it.
type notice struct {
	message string
	level   Level
}

// NewController creates a controller with an empty state.
func NewController(fetcher Fetcher, notifier Notifier, logger zerolog.Logger) *Controller {
	if notifier == nil {
		notifier = NotifierFunc(func(string, Level) {})
	}
	return &Controller{
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger.With().Str("component", "gallery").Logger(),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SubmitQuery starts a new search unless query equals the current one.
// Empty or whitespace input is the caller's concern.
func (c *Controller) SubmitQuery(ctx context.Context, query string) {
	c.mu.Lock()
	if c.state.Submitted && c.state.Query == query {
		c.mu.Unlock()
		c.logger.Debug().Str("query", query).Msg("Query unchanged, skipping fetch")
		return
	}
	t := c.resetLocked(query)
	c.mu.Unlock()

	c.run(ctx, t)
}

// OnExternalQueryChanged reacts to a query owned by someone else. It fires
// only when the observed value actually changed and then behaves like a fresh
// SubmitQuery for newQuery.
func (c *Controller) OnExternalQueryChanged(ctx context.Context, oldQuery, newQuery string) {
	if oldQuery == newQuery {
		return
	}

	c.mu.Lock()
	t := c.resetLocked(newQuery)
	c.mu.Unlock()

	c.run(ctx, t)
}

// LoadMore fetches the page after the last one applied. When every result is
// already loaded it emits an informational notice instead of fetching.
func (c *Controller) LoadMore(ctx context.Context) {
	c.mu.Lock()
	if c.active > 0 {
		c.mu.Unlock()
		c.logger.Debug().Msg("Fetch already in flight, ignoring load more")
		return
	}
	if c.state.Exhausted() {
		c.mu.Unlock()
		c.notifier.Notify(MsgEndOfResults, LevelInfo)
		return
	}
	t := c.beginLocked(c.state.Query, c.state.Page+1, modeAppend)
	c.mu.Unlock()

	c.run(ctx, t)
}

// SelectItem toggles the overlay: selecting the shown item closes it,
// selecting any other item swaps it in.
func (c *Controller) SelectItem(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Selection != nil && c.state.Selection.ID == item.ID {
		c.state.Selection = nil
		return
	}
	selected := item
	c.state.Selection = &selected
}

// DismissOverlay clears the selection.
func (c *Controller) DismissOverlay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection = nil
}

// resetLocked switches to query and launches its first page. Items stay on
// screen until the new page arrives.
func (c *Controller) resetLocked(query string) ticket {
	c.generation++
	c.active = 0
	c.state.Query = query
	c.state.Submitted = true
	return c.beginLocked(query, 1, modeReplace)
}

func (c *Controller) beginLocked(query string, page int, m mode) ticket {
	c.inflight++
	c.active++
	c.state.Loading = true
	return ticket{
		generation: c.generation,
		query:      query,
		page:       page,
		mode:       m,
	}
}

// run performs the fetch and always settles it, even if the Fetcher panics,
// so Loading can never stay stuck.
func (c *Controller) run(ctx context.Context, t ticket) {
	var (
		page Page
		err  error
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetcher panic: %v", r)
		}
		c.settle(t, page, err)
	}()

	c.logger.Debug().
		Str("query", t.query).
		Int("page", t.page).
		Stringer("mode", t.mode).
		Msg("Fetching page")

	page, err = c.fetcher.Fetch(ctx, t.query, t.page)
}

func (c *Controller) settle(t ticket, page Page, err error) {
	var n *notice

	c.mu.Lock()
	c.inflight--
	stale := t.generation != c.generation
	if !stale {
		c.active--
	}

	next := c.state
	next.Loading = c.inflight > 0

	switch {
	case stale:
		c.logger.Debug().
			Str("query", t.query).
			Int("page", t.page).
			Msg("Discarding result for superseded query")
	case err != nil:
		c.logger.Error().
			Err(err).
			Str("query", t.query).
			Int("page", t.page).
			Msg("Failed to fetch page")
		n = &notice{message: MsgFetchFailed, level: LevelError}
	case page.TotalHits == 0:
		n = &notice{message: MsgInvalidQuery, level: LevelError}
	case t.mode == modeReplace:
		next = next.withItems(page.Items)
		next.TotalCount = page.TotalHits
		next.TotalKnown = true
		next.Page = t.page
	default:
		next = next.withAppended(page.Items)
		next.Page = t.page
	}

	c.state = next
	c.mu.Unlock()

	if n != nil {
		c.notifier.Notify(n.message, n.level)
	}
}
