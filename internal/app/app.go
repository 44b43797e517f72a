// Package app wires configuration, the provider catalog, the job
// tracker and the HTTP surfaces into a runnable service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crafthq/designbind/internal/api"
	"github.com/crafthq/designbind/internal/catalog"
	"github.com/crafthq/designbind/internal/config"
	"github.com/crafthq/designbind/internal/jobs"
	"github.com/crafthq/designbind/internal/metrics"
	"github.com/crafthq/designbind/internal/platform"
)

// App is the main application
type App struct {
	config        *config.Config
	journal       *jobs.BoltStore
	tracker       *jobs.Tracker
	registry      *catalog.Registry
	platform      *platform.Client
	apiServer     *api.Server
	metricsServer *metrics.Server
	collector     *metrics.Collector
	logger        *slog.Logger
}

// New creates a new application
func New(cfg *config.Config) (*App, error) {
	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Setup metrics
	m := metrics.New()
	metrics.SetGlobal(m)

	// Open the job journal
	journal, err := jobs.NewBoltStore(cfg.Jobs.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open job journal: %w", err)
	}

	// Platform API client
	pc := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token)

	// Design sources: tokens come from the platform's stored connections,
	// with the locally configured token as fallback.
	figmaTokens := platform.NewConnectionToken(pc, string(catalog.ProviderFigma), cfg.Providers.Figma.Token)
	canvaTokens := platform.NewConnectionToken(pc, string(catalog.ProviderCanva), cfg.Providers.Canva.Token)

	registry := catalog.NewRegistry(
		catalog.NewBuiltin(),
		catalog.NewFigma(figmaTokens),
		catalog.NewCanva(canvaTokens),
	)

	// Job tracker over the platform's async pipelines
	tracker := jobs.New(journal, logger, m, jobs.Config{
		PollInterval:    cfg.Jobs.PollInterval,
		MaxPollFailures: *cfg.Jobs.MaxPollFailures,
	},
		platform.NewResearchRunner(pc),
		platform.NewVideoRunner(pc),
	)

	// API server
	apiServer := api.NewServer(registry, pc, tracker, &cfg.Server, logger.With("component", "api"))

	// Metrics server and system collector
	var metricsServer *metrics.Server
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(m, cfg.Metrics.ListenAddr, cfg.Metrics.Path, cfg.Metrics.AllowedIPs, logger.With("component", "metrics"))
		collector = metrics.NewCollector(m, cfg.Jobs.JournalPath)
	}

	return &App{
		config:        cfg,
		journal:       journal,
		tracker:       tracker,
		registry:      registry,
		platform:      pc,
		apiServer:     apiServer,
		metricsServer: metricsServer,
		collector:     collector,
		logger:        logger,
	}, nil
}

// Run starts all components and waits for shutdown
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting designbind",
		"api_addr", a.config.Server.ListenAddr,
		"platform_url", a.config.Platform.BaseURL,
		"journal", a.config.Jobs.JournalPath,
	)

	// Create context that listens for signals
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if a.collector != nil {
		a.collector.Start(ctx)
	}

	// Periodic journal cleanup of old terminal jobs
	go a.purgeLoop(ctx)

	// Channel to collect errors
	errCh := make(chan error, 2)

	// Start API server
	go func() {
		if err := a.apiServer.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	// Start metrics server
	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("server error", "error", err)
		cancel()
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// purgeLoop periodically removes terminal jobs past the retention age.
func (a *App) purgeLoop(ctx context.Context) {
	if a.config.Jobs.Retention <= 0 {
		return
	}

	ticker := time.NewTicker(a.config.Jobs.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := a.journal.Purge(a.config.Jobs.Retention)
			if err != nil {
				a.logger.Error("journal purge failed", "error", err)
				continue
			}
			if deleted > 0 {
				a.logger.Info("journal purged", "deleted", deleted)
			}
		}
	}
}

// Shutdown gracefully shuts down all components
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	// Create timeout context
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop tracking first (stop accepting new work)
	a.tracker.Stop()

	if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("api server shutdown error", "error", err)
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("metrics server shutdown error", "error", err)
		}
	}

	if a.collector != nil {
		a.collector.Stop()
	}

	// Close the journal
	if err := a.journal.Close(); err != nil {
		a.logger.Error("journal close error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

// setupLogger creates a logger based on configuration
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
