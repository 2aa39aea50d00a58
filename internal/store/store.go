// Package store defines the storage interfaces for pix's persistence layer.
// It provides abstractions for the result page cache and for the history of
// submitted queries.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested page or record does not exist.
var ErrNotFound = errors.New("not found")

// PageStore caches result pages keyed by request parameters, query and page
// number.
// Images of a page are stored separately from the page metadata and
// come back in the order they were stored.
type PageStore interface {
	// Get returns the cached page for (params, query, page).
	// Returns ErrNotFound if nothing is cached.
	Get(params, query string, page int) (*CachedPage, error)

	// Put stores a page, replacing any previous entry for the same
	// (params, query, page). If FetchedAt is zero the current time is used.
	Put(page *CachedPage) error

	// DeleteOlderThan removes pages fetched before cutoff and returns
	// how many pages were removed.
	DeleteOlderThan(cutoff time.Time) (int, error)

	// Count returns the number of cached pages.
	Count() (int, error)

	// Clear removes every cached page.
	Clear() error
}

// HistoryStore manages the submitted query history.
type HistoryStore interface {
	// Record notes that query was submitted at the given time. A query that
	// is already present moves to the top and has its count incremented.
	Record(query string, at time.Time) (*QueryRecord, error)

	// List returns records ordered by last submission (newest first).
	// If limit is 0, all records are returned.
	List(limit int) ([]*QueryRecord, error)

	// Delete removes a record by ID.
	// Returns ErrNotFound if the record does not exist.
	Delete(id uint) error

	// DeleteOldest removes the N least recently submitted records.
	DeleteOldest(count int) error

	// Count returns the number of records.
	Count() (int, error)

	// Clear removes all records.
	Clear() error

	// Search finds records whose query matches the pattern.
	Search(query *SearchQuery) ([]*QueryRecord, error)
}

// Store combines the page cache and the query history.
// Implementations manage both as a single unit.
type Store interface {
	// Pages returns the result page cache.
	Pages() PageStore

	// History returns the query history.
	History() HistoryStore

	// Close releases all resources.
	Close() error
}
