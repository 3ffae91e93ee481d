package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient runs a single keyword search against the used-book catalog.
// Query never fails: every transport, status or decoding problem yields nil.
type CatalogClient interface {
	Query(ctx context.Context, keyword string) *CatalogItem
}

// PageParser extracts title and author from a product page
type PageParser interface {
	Parse(html []byte) (*PageInfo, error)
}
