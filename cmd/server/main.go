package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shelfcheck/backend/config"
	"github.com/shelfcheck/backend/internal/app"
	httpDelivery "github.com/shelfcheck/backend/internal/delivery/http"
	"github.com/shelfcheck/backend/internal/infrastructure/amazon"
	"github.com/shelfcheck/backend/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logging.Setup(app.LogOptions(cfg.Log)); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Msg("starting shelfcheck backend v1.0.0")

	// Initialize infrastructure and usecase layers
	pipeline := app.New(cfg)
	defer func() {
		if err := pipeline.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close lookup pipeline")
		}
	}()

	handler := httpDelivery.NewHandler(pipeline.Lookup, amazon.NewParser())
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
