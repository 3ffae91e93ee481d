package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/shelfcheck/backend/internal/domain"
)

// LookupServiceConfig holds configuration for the lookup service
type LookupServiceConfig struct {
	CacheTTL            time.Duration
	SimilarityThreshold float64
	StepDelay           time.Duration
	SiteURL             string
	Clock               clockwork.Clock
}

// LookupService resolves a scraped book page to a catalog notification
type LookupService struct {
	cache        domain.CacheRepository
	preprocessor *QueryPreprocessor
	cascade      *Cascade
	presenter    *Presenter
	cacheTTL     time.Duration
}

// NewLookupService creates a new lookup service with dependencies.
// A nil cache or a zero CacheTTL disables result caching.
func NewLookupService(
	cache domain.CacheRepository,
	catalog domain.CatalogClient,
	config LookupServiceConfig,
) *LookupService {
	preprocessor := NewQueryPreprocessor()
	matcher := NewMatchingService(MatchConfig{
		SimilarityThreshold: config.SimilarityThreshold,
	})

	return &LookupService{
		cache:        cache,
		preprocessor: preprocessor,
		cascade: NewCascade(catalog, matcher, preprocessor, CascadeConfig{
			StepDelay: config.StepDelay,
			Clock:     config.Clock,
		}),
		presenter: NewPresenter(config.SiteURL),
		cacheTTL:  config.CacheTTL,
	}
}

// Resolve looks up a book page in the catalog.
// Flow: check cache -> reduce title -> run cascade -> present -> cache -> return
func (s *LookupService) Resolve(ctx context.Context, page *domain.PageInfo) (*domain.Notification, error) {
	if page == nil || strings.TrimSpace(page.Title) == "" {
		return nil, domain.ErrInvalidRequest
	}

	rawTitle := strings.TrimSpace(page.Title)
	author := strings.TrimSpace(page.Author)
	cacheKey := generateCacheKey(rawTitle, author)

	if cached := s.getFromCache(ctx, cacheKey); cached != nil {
		log.Debug().Str("key", cacheKey).Msg("resolution served from cache")
		return cached, nil
	}

	title := s.preprocessor.Reduce(rawTitle)
	resolution := s.cascade.Run(ctx, title, author)
	notification := s.presenter.Present(resolution)

	// Only matches are remembered. A no_match may come from an upstream
	// outage; negative results are cached per keyword by the catalog client.
	if resolution.Matched() && ctx.Err() == nil {
		s.setInCache(ctx, cacheKey, notification)
	}

	return notification, nil
}

// generateCacheKey creates a cache key from the trimmed page fields.
// Titles are kept verbatim because queries and search seeds are built from them.
// Format: "resolution:{quoted_title}:{quoted_author}"
func generateCacheKey(title, author string) string {
	return fmt.Sprintf("resolution:%q:%q", title, author)
}

func (s *LookupService) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// getFromCache returns a cached notification or nil
func (s *LookupService) getFromCache(ctx context.Context, key string) *domain.Notification {
	if !s.cachingEnabled() {
		return nil
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}

	if notification, ok := value.(*domain.Notification); ok {
		return notification
	}

	// the memory cache stores JSON-shaped values
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var notification domain.Notification
	if err := json.Unmarshal(raw, &notification); err != nil || notification.Kind == "" {
		return nil
	}
	return &notification
}

func (s *LookupService) setInCache(ctx context.Context, key string, notification *domain.Notification) {
	if !s.cachingEnabled() {
		return
	}
	if err := s.cache.Set(ctx, key, notification, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache resolution")
	}
}
