package pixabay

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid pixabay configuration")
	// ErrInvalidPage indicates a page number below 1
	ErrInvalidPage = errors.New("page must be at least 1")
	// ErrInvalidResponse indicates a body that could not be decoded
	ErrInvalidResponse = errors.New("invalid response from pixabay")
)

// APIError represents a non-200 answer from the Pixabay API
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("pixabay API error: status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports a rejected API key
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited reports an exhausted request quota
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsBadRequest reports a rejected parameter, e.g. a page past the last one
func (e *APIError) IsBadRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}
