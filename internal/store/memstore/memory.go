// Package memstore provides an in-memory implementation of the store interfaces.
// This implementation is designed for fast unit testing and does not persist data.
package memstore

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/yiblet/pix/internal/store"
)

// MemoryStore is an in-memory implementation of store.Store.
// It uses maps for storage and is thread-safe via mutexes.
// Data is not persisted and exists only for the lifetime of the process.
type MemoryStore struct {
	pages   *memoryPageStore
	history *memoryHistoryStore
}

// NewMemoryStore creates a new in-memory store for testing.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:   newMemoryPageStore(),
		history: newMemoryHistoryStore(),
	}
}

// Pages returns the page cache.
func (m *MemoryStore) Pages() store.PageStore {
	return m.pages
}

// History returns the query history.
func (m *MemoryStore) History() store.HistoryStore {
	return m.history
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

type pageKey struct {
	params string
	query  string
	page   int
}

// memoryPageStore implements store.PageStore using a map keyed by (params, query, page).
type memoryPageStore struct {
	mu     sync.RWMutex
	pages  map[pageKey]*store.CachedPage
	nextID uint
}

func newMemoryPageStore() *memoryPageStore {
	return &memoryPageStore{
		pages:  make(map[pageKey]*store.CachedPage),
		nextID: 1,
	}
}

// clonePage copies the page so callers never share the stored image slice.
func clonePage(p *store.CachedPage) *store.CachedPage {
	out := *p
	out.Images = append([]store.Image(nil), p.Images...)
	return &out
}

func (m *memoryPageStore) Get(params, query string, page int) (*store.CachedPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pages[pageKey{params, query, page}]
	if !ok {
		return nil, fmt.Errorf("page %q/%d: %w", query, page, store.ErrNotFound)
	}
	return clonePage(p), nil
}

func (m *memoryPageStore) Put(page *store.CachedPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now()
	}
	page.ID = m.nextID
	m.nextID++

	m.pages[pageKey{page.Params, page.Query, page.Page}] = clonePage(page)
	return nil
}

func (m *memoryPageStore) DeleteOlderThan(cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, p := range m.pages {
		if p.FetchedAt.Before(cutoff) {
			delete(m.pages, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryPageStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages), nil
}

func (m *memoryPageStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = make(map[pageKey]*store.CachedPage)
	return nil
}

// memoryHistoryStore implements store.HistoryStore using in-memory maps.
type memoryHistoryStore struct {
	mu      sync.RWMutex
	records map[uint]*store.QueryRecord
	byQuery map[string]uint
	nextID  uint
}

// newMemoryHistoryStore creates a new in-memory history store.
func newMemoryHistoryStore() *memoryHistoryStore {
	return &memoryHistoryStore{
		records: make(map[uint]*store.QueryRecord),
		byQuery: make(map[string]uint),
		nextID:  1,
	}
}

// Record inserts the query or bumps the existing record.
func (m *memoryHistoryStore) Record(query string, at time.Time) (*store.QueryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if id, ok := m.byQuery[query]; ok {
		rec := m.records[id]
		rec.SearchedAt = at
		rec.Count++
		rec.UpdatedAt = now
		out := *rec
		return &out, nil
	}

	rec := &store.QueryRecord{
		ID:         m.nextID,
		Query:      query,
		SearchedAt: at,
		Count:      1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.nextID++
	m.records[rec.ID] = rec
	m.byQuery[query] = rec.ID

	out := *rec
	return &out, nil
}

// sortedLocked returns copies of all records, newest first.
// Caller must hold at least a read lock.
func (m *memoryHistoryStore) sortedLocked() []*store.QueryRecord {
	out := make([]*store.QueryRecord, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SearchedAt.Equal(out[j].SearchedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SearchedAt.After(out[j].SearchedAt)
	})
	return out
}

// List returns records ordered by last submission (newest first).
func (m *memoryHistoryStore) List(limit int) ([]*store.QueryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.sortedLocked()
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes a record by ID.
func (m *memoryHistoryStore) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("query %d: %w", id, store.ErrNotFound)
	}
	delete(m.records, id)
	delete(m.byQuery, rec.Query)
	return nil
}

// DeleteOldest removes the N least recently submitted records.
func (m *memoryHistoryStore) DeleteOldest(count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count <= 0 {
		return nil
	}

	records := m.sortedLocked()
	for i := len(records) - 1; i >= 0 && count > 0; i-- {
		delete(m.records, records[i].ID)
		delete(m.byQuery, records[i].Query)
		count--
	}
	return nil
}

// Count returns the number of records.
func (m *memoryHistoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Clear removes all records.
func (m *memoryHistoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[uint]*store.QueryRecord)
	m.byQuery = make(map[string]uint)
	return nil
}

// Search finds records whose query matches the pattern, newest first.
func (m *memoryHistoryStore) Search(query *store.SearchQuery) ([]*store.QueryRecord, error) {
	if query.Pattern == "" {
		return []*store.QueryRecord{}, nil
	}

	pattern := query.Pattern
	if !query.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []*store.QueryRecord{}
	for _, rec := range m.sortedLocked() {
		if !re.MatchString(rec.Query) {
			continue
		}
		results = append(results, rec)
		if query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}
	return results, nil
}
