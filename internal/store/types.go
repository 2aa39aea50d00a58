package store

import (
	"time"
)

// Image is a cached search hit.
type Image struct {
	ID            int64
	ThumbnailURL  string
	LargeImageURL string
	Tags          string
	PageURL       string
	User          string
	Width         int
	Height        int
}

// CachedPage is one page of search results as it was fetched.
type CachedPage struct {
	// ID is assigned by the storage layer.
	ID uint

	// Params, Query and Page identify the page. Params fingerprints the
	// request settings that decide page boundaries and filtering. Query is
	// stored verbatim.
	Params string
	Query  string
	Page   int

	// TotalHits is the total reported alongside this page.
	TotalHits int

	// Images are kept in arrival order.
	Images []Image

	// FetchedAt drives expiry.
	FetchedAt time.Time
}

// QueryRecord is a submitted query.
type QueryRecord struct {
	// ID is the unique identifier for this record.
	ID uint

	// Query is the sanitized search text.
	Query string

	// SearchedAt is the time of the most recent submission.
	SearchedAt time.Time

	// Count is how many times the query was submitted.
	Count int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SearchQuery contains parameters for searching the query history.
type SearchQuery struct {
	// Pattern is a regular expression matched against the query text.
	Pattern string

	// Limit is the maximum number of results to return.
	// A value of 0 means no limit.
	Limit int

	// CaseSensitive indicates whether the match is case-sensitive.
	CaseSensitive bool
}
