package app

import (
	"github.com/rs/zerolog/log"

	"github.com/shelfcheck/backend/config"
	"github.com/shelfcheck/backend/internal/domain"
	"github.com/shelfcheck/backend/internal/infrastructure/cache"
	"github.com/shelfcheck/backend/internal/infrastructure/valuebooks"
	"github.com/shelfcheck/backend/internal/logging"
	"github.com/shelfcheck/backend/internal/usecase"
)

// App bundles the wired lookup pipeline
type App struct {
	Lookup  *usecase.LookupService
	Catalog domain.CatalogClient
	cache   *cache.MemoryCache
}

// LogOptions maps the log config section onto logging options
func LogOptions(cfg config.LogConfig) logging.Options {
	return logging.Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
}

// New wires cache, catalog client and lookup service from cfg
func New(cfg *config.Config) *App {
	memoryCache := cache.NewMemoryCache(0)

	client := valuebooks.NewClient(valuebooks.ClientConfig{
		BaseURL:           cfg.Catalog.BaseURL,
		UserAgent:         cfg.Catalog.UserAgent,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
	})

	var catalog domain.CatalogClient = client
	if cfg.Cache.TTL > 0 {
		catalog = valuebooks.NewCachedClient(client, memoryCache, cfg.Cache.TTL)
	}

	log.Info().
		Str("catalog", cfg.Catalog.BaseURL).
		Dur("cache_ttl", cfg.Cache.TTL).
		Float64("threshold", cfg.Matching.SimilarityThreshold).
		Dur("step_delay", cfg.Cascade.StepDelay).
		Msg("lookup pipeline configured")

	lookup := usecase.NewLookupService(memoryCache, catalog, usecase.LookupServiceConfig{
		CacheTTL:            cfg.Cache.TTL,
		SimilarityThreshold: cfg.Matching.SimilarityThreshold,
		StepDelay:           cfg.Cascade.StepDelay,
		SiteURL:             cfg.Catalog.SiteURL,
	})

	return &App{Lookup: lookup, Catalog: catalog, cache: memoryCache}
}

// Close stops background work owned by the app
func (a *App) Close() error {
	return a.cache.Close()
}
