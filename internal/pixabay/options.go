package pixabay

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://pixabay.com/api/"
	// DefaultPerPage matches the grid size of the gallery.
	DefaultPerPage = 12
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	minPerPage = 3
	maxPerPage = 200
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithPerPage sets the page size, clamped to the range the API accepts.
func WithPerPage(perPage int) Option {
	return func(c *Client) {
		c.perPage = min(max(perPage, minPerPage), maxPerPage)
	}
}

// WithImageType restricts results to photo, illustration or vector.
func WithImageType(imageType string) Option {
	return func(c *Client) {
		c.imageType = imageType
	}
}

// WithOrientation restricts results to horizontal or vertical images.
func WithOrientation(orientation string) Option {
	return func(c *Client) {
		c.orientation = orientation
	}
}

// WithSafeSearch toggles the API's safe search filter.
func WithSafeSearch(enabled bool) Option {
	return func(c *Client) {
		c.safeSearch = enabled
	}
}
