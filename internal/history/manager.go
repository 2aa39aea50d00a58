// Package history keeps the list of submitted search queries.
package history

import (
	"fmt"
	"time"

	"github.com/yiblet/pix/internal/store"
)

const (
	// DefaultLimit is the number of queries kept when none is configured.
	DefaultLimit = 50

	// MaxQueryLen is the longest query, in runes, that is recorded.
	MaxQueryLen = 100
)

// Manager records queries in a store.HistoryStore and keeps it trimmed to a
// limit, newest first.
type Manager struct {
	store store.HistoryStore
	limit int
	now   func() time.Time
}

// NewManager creates a manager over s. A limit of zero or less uses DefaultLimit.
func NewManager(s store.HistoryStore, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{
		store: s,
		limit: limit,
		now:   time.Now,
	}
}

// Record stores query as the most recent entry. Blank queries are skipped and
// return a nil record. Repeating a query moves it to the top.
func (m *Manager) Record(query string) (*store.QueryRecord, error) {
	query = Truncate(Sanitize(query), MaxQueryLen)
	if query == "" {
		return nil, nil
	}

	rec, err := m.store.Record(query, m.now())
	if err != nil {
		return nil, fmt.Errorf("failed to record query: %w", err)
	}

	if err := m.trim(); err != nil {
		return nil, fmt.Errorf("failed to trim history: %w", err)
	}

	return rec, nil
}

// List returns up to limit records, newest first. A limit of zero or less
// returns everything kept.
func (m *Manager) List(limit int) ([]*store.QueryRecord, error) {
	if limit <= 0 || limit > m.limit {
		limit = m.limit
	}
	return m.store.List(limit)
}

// Queries returns the recorded query strings, newest first.
func (m *Manager) Queries() ([]string, error) {
	records, err := m.List(0)
	if err != nil {
		return nil, err
	}
	queries := make([]string, len(records))
	for i, rec := range records {
		queries[i] = rec.Query
	}
	return queries, nil
}

// Get returns a record by index (0 = newest).
func (m *Manager) Get(index int) (*store.QueryRecord, error) {
	records, err := m.List(0)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(records) {
		return nil, fmt.Errorf("index %d out of range (0-%d)", index, len(records)-1)
	}

	return records[index], nil
}

// Delete removes a record by index.
func (m *Manager) Delete(index int) error {
	rec, err := m.Get(index)
	if err != nil {
		return err
	}
	return m.store.Delete(rec.ID)
}

// Search returns records matching a regular expression, newest first.
func (m *Manager) Search(pattern string, limit int) ([]*store.QueryRecord, error) {
	return m.store.Search(&store.SearchQuery{Pattern: pattern, Limit: limit})
}

// Clear removes every record.
func (m *Manager) Clear() error {
	return m.store.Clear()
}

// Size returns the number of records.
func (m *Manager) Size() (int, error) {
	return m.store.Count()
}

// Limit returns the configured history limit.
func (m *Manager) Limit() int {
	return m.limit
}

// trim removes records exceeding the limit.
func (m *Manager) trim() error {
	count, err := m.store.Count()
	if err != nil {
		return err
	}

	if count > m.limit {
		return m.store.DeleteOldest(count - m.limit)
	}

	return nil
}
