package domain

import "errors"

var (
	// ErrNoCatalogResult is returned when the catalog search has no items
	ErrNoCatalogResult = errors.New("no items in catalog search result")

	// ErrCatalogUnavailable is returned when the catalog request fails or returns a non-200 status
	ErrCatalogUnavailable = errors.New("catalog search request failed")

	// ErrMalformedResponse is returned when the catalog body is not the expected JSON
	ErrMalformedResponse = errors.New("malformed catalog response")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrTitleNotFound is returned when a product page has no title element
	ErrTitleNotFound = errors.New("product title not found on page")

	// ErrPageUnavailable is returned when a product page cannot be fetched
	ErrPageUnavailable = errors.New("product page unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
