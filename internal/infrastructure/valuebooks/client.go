package valuebooks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/shelfcheck/backend/internal/domain"
)

const (
	// DefaultBaseURL is the catalog host serving /api/search
	DefaultBaseURL   = "https://www.valuebooks.jp"
	DefaultUserAgent = "Mozilla/5.0 (compatible; shelfcheck/1.0)"
	DefaultTimeout   = 10 * time.Second

	acceptHeader = "application/json, text/plain, */*"

	// maxBodyBytes bounds how much of a search response is read
	maxBodyBytes = 4 << 20
)

// ClientConfig holds configuration for the catalog client
type ClientConfig struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client handles communication with the ValueBooks search API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
}

// NewClient creates a new catalog client. A non-positive RequestsPerSecond
// disables outbound rate limiting.
func NewClient(config ClientConfig) *Client {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(limit, burst),
	}
}

// searchURL builds the first-page search URL for a keyword
func (c *Client) searchURL(keyword string) string {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("search_word", keyword)
	params.Set("conditions_stock", "0")
	return fmt.Sprintf("%s/api/search?%s", c.baseURL, params.Encode())
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return resp, nil
}

// Search runs a single keyword search and returns the first item.
// No retries: a failed request is reported and the caller moves on.
func (c *Client) Search(ctx context.Context, keyword string) (*domain.CatalogItem, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}

	resp, err := c.doRequest(ctx, c.searchURL(keyword))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrCatalogUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
	}

	return decodeFirstItem(body)
}

// Query is Search with every failure collapsed into a nil item
func (c *Client) Query(ctx context.Context, keyword string) *domain.CatalogItem {
	return queryOrNil(ctx, c, keyword)
}

// searcher is implemented by Client and CachedClient
type searcher interface {
	Search(ctx context.Context, keyword string) (*domain.CatalogItem, error)
}

func queryOrNil(ctx context.Context, s searcher, keyword string) *domain.CatalogItem {
	item, err := s.Search(ctx, keyword)
	if err != nil {
		log.Debug().Err(err).Str("keyword", keyword).Msg("catalog search yielded no item")
		return nil
	}

	log.Debug().
		Str("keyword", keyword).
		Str("title", item.Title).
		Str("catalog_id", item.CatalogID).
		Msg("catalog search returned item")
	return item
}
