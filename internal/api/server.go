package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/crafthq/designbind/internal/catalog"
	"github.com/crafthq/designbind/internal/config"
	"github.com/crafthq/designbind/internal/jobs"
	"github.com/crafthq/designbind/internal/metrics"
	"github.com/crafthq/designbind/internal/platform"
)

// Server is the HTTP API server the dashboard talks to
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	registry   *catalog.Registry
	platform   *platform.Client
	tracker    *jobs.Tracker
	config     *config.ServerConfig
	logger     *slog.Logger
	startTime  time.Time
}

// NewServer creates a new API server
func NewServer(reg *catalog.Registry, pc *platform.Client, tracker *jobs.Tracker, cfg *config.ServerConfig, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		registry:  reg,
		platform:  pc,
		tracker:   tracker,
		config:    cfg,
		logger:    logger,
		startTime: time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metrics.HTTPMiddleware)
	s.router.Use(middleware.Recoverer)

	// Health check (no auth required)
	s.router.Get("/health", s.handleHealth)

	// API v1 routes (auth required)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/providers", s.handleProviders)
		r.Get("/providers/{provider}/targets", s.handleListTargets)
		r.Get("/providers/{provider}/slots", s.handleListSlots)

		r.Post("/mappings/propose", s.handleProposeMapping)

		r.Get("/templates/{id}/design-source", s.handleGetDesignSource)
		r.Put("/templates/{id}/design-source", s.handleSetDesignSource)
		r.Delete("/templates/{id}/design-source", s.handleClearDesignSource)

		r.Post("/jobs", s.handleStartJob)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Delete("/jobs/{id}", s.handleCancelJob)
	})
}

// Handler returns the router, for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddr,
		Handler:        s.router,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
