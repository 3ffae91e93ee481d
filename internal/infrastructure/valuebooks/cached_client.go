package valuebooks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shelfcheck/backend/internal/domain"
)

const cacheKeyPrefix = "catalog:"

// cacheEntry is stored for both hits and empty results
type cacheEntry struct {
	Item *domain.CatalogItem `json:"item,omitempty"`
}

// CachedClient memoizes keyword searches. Successful items and empty results
// are cached; transport and status failures are not.
type CachedClient struct {
	next  searcher
	cache domain.CacheRepository
	ttl   time.Duration
}

// NewCachedClient wraps a client with a keyword cache
func NewCachedClient(next *Client, cache domain.CacheRepository, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, cache: cache, ttl: ttl}
}

// Search returns the cached result for keyword or asks the wrapped client
func (c *CachedClient) Search(ctx context.Context, keyword string) (*domain.CatalogItem, error) {
	key := cacheKeyPrefix + keyword

	if entry, ok := c.lookup(ctx, key); ok {
		if entry.Item == nil {
			return nil, domain.ErrNoCatalogResult
		}
		item := *entry.Item
		return &item, nil
	}

	item, err := c.next.Search(ctx, keyword)
	switch {
	case err == nil:
		c.store(ctx, key, cacheEntry{Item: item})
	case errors.Is(err, domain.ErrNoCatalogResult):
		c.store(ctx, key, cacheEntry{})
	}

	return item, err
}

// Query is Search with every failure collapsed into a nil item
func (c *CachedClient) Query(ctx context.Context, keyword string) *domain.CatalogItem {
	return queryOrNil(ctx, c, keyword)
}

func (c *CachedClient) lookup(ctx context.Context, key string) (cacheEntry, bool) {
	value, err := c.cache.Get(ctx, key)
	if err != nil {
		return cacheEntry{}, false
	}

	if entry, ok := value.(cacheEntry); ok {
		return entry, true
	}

	// JSON-shaped values from the memory cache
	raw, err := json.Marshal(value)
	if err != nil {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *CachedClient) store(ctx context.Context, key string, entry cacheEntry) {
	if err := c.cache.Set(ctx, key, entry, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache catalog result")
	}
}
