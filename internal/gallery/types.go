// Package gallery holds the search/pagination/selection state machine behind
// the image grid. It decides when to fetch, whether a page replaces or extends
// the current results, when to tell the user something, and when pagination
// stops. Rendering and transport live elsewhere; this package only talks to
// them through the Fetcher and Notifier interfaces.
package gallery

import "context"

// Item is a single image result. Items are immutable once fetched.
type Item struct {
	// ID uniquely identifies the image within the search backend.
	ID int64

	// ThumbnailURL is the grid-sized rendition.
	ThumbnailURL string

	// LargeImageURL is the full-size rendition shown in the overlay.
	LargeImageURL string

	// Tags is the descriptive text, comma separated.
	Tags string

	// PageURL links to the image's page on the backend's site.
	PageURL string

	// User is the contributor's name.
	User string

	// Width and Height are the original dimensions in pixels. Zero when unknown.
	Width  int
	Height int
}

// Page is one page of results as reported by a Fetcher.
type Page struct {
	Items []Item

	// TotalHits is the number of results reachable for the query.
	TotalHits int
}

// Fetcher retrieves one page of results for a query. Pages are 1-indexed.
type Fetcher interface {
	Fetch(ctx context.Context, query string, page int) (Page, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, query string, page int) (Page, error)

// Fetch calls f(ctx, query, page).
func (f FetcherFunc) Fetch(ctx context.Context, query string, page int) (Page, error) {
	return f(ctx, query, page)
}

// Level is the severity of a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier surfaces a message to the user. Fire and forget.
type Notifier interface {
	Notify(message string, level Level)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string, level Level)

// Notify calls f(message, level).
func (f NotifierFunc) Notify(message string, level Level) {
	f(message, level)
}

// User-facing notification texts.
const (
	MsgEndOfResults = "We're sorry, but you've reached the end of search results."
	MsgInvalidQuery = "Oops! Enter a valid search query."
	MsgFetchFailed  = "Oops! Something went wrong. Try again later."
)

// mode says what a successful fetch does to the current results.
type mode int

const (
	modeReplace mode = iota
	modeAppend
)

func (m mode) String() string {
	if m == modeAppend {
		return "append"
	}
	return "replace"
}
