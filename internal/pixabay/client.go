package pixabay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yiblet/pix/internal/gallery"
)

// Client represents a Pixabay API client
type Client struct {
	baseURL     string
	apiKey      string
	perPage     int
	imageType   string
	orientation string
	safeSearch  bool
	httpClient  *http.Client
	logger      zerolog.Logger
}

var _ gallery.Fetcher = (*Client)(nil)

// NewClient creates a new Pixabay client
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	client := &Client{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		perPage:     DefaultPerPage,
		imageType:   "photo",
		orientation: "horizontal",
		safeSearch:  true,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger.With().Str("component", "pixabay").Logger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}

	return client, nil
}

// PerPage returns the configured page size
func (c *Client) PerPage() int {
	return c.perPage
}

// Search fetches one page of hits for query
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchResponse, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	params := c.resultParams()
	params.Set("key", c.apiKey)
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var response SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.logger.Debug().
		Str("query", query).
		Int("page", page).
		Int("hits", len(response.Hits)).
		Int("total_hits", response.TotalHits).
		Msg("Retrieved search page from Pixabay")

	return &response, nil
}

// Fetch implements gallery.Fetcher
func (c *Client) Fetch(ctx context.Context, query string, page int) (gallery.Page, error) {
	resp, err := c.Search(ctx, query, page)
	if err != nil {
		return gallery.Page{}, err
	}
	return resp.ToPage(), nil
}

// CacheKey identifies the settings that decide which hits land on which
// page. Pages fetched under different keys must not be mixed.
func (c *Client) CacheKey() string {
	return c.baseURL + "?" + c.resultParams().Encode()
}

// resultParams holds every request parameter except the key, query and page
func (c *Client) resultParams() url.Values {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("safesearch", strconv.FormatBool(c.safeSearch))
	if c.imageType != "" {
		params.Set("image_type", c.imageType)
	}
	if c.orientation != "" {
		params.Set("orientation", c.orientation)
	}
	return params
}

// doRequest performs a GET against the search endpoint
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors quote the request URL, API key included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactKey(urlErr.URL)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}

// redactKey masks the key parameter of a request URL
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable URL]"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
