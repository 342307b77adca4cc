// Package api exposes the roster, reconciliation and run history over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/eshaffer321/tuition-reconciler/internal/api/handlers"
	"github.com/eshaffer321/tuition-reconciler/internal/api/middleware"
	"github.com/eshaffer321/tuition-reconciler/internal/application/service"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	RateLimit      float64 // reconcile requests per second per client, 0 disables
	RateBurst      int
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8085,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// ConfigFrom converts the application's api section.
func ConfigFrom(cfg config.APIConfig) Config {
	return Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	svc        *service.ReconcileService
}

// NewServer creates a new API server.
func NewServer(cfg Config, repo storage.Repository, svc *service.ReconcileService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
		repo:   repo,
		svc:    svc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.Recoverer)

	// CORS
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.repo, s.svc != nil && s.svc.HasExtractor())
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		// Roster
		studentsHandler := handlers.NewStudentsHandler(s.repo, s.svc)
		r.Get("/students", studentsHandler.List)
		r.Post("/students", studentsHandler.Create)
		r.Post("/students/import", studentsHandler.Import)
		r.Get("/students/{id}", studentsHandler.Get)
		r.Put("/students/{id}", studentsHandler.Update)
		r.Delete("/students/{id}", studentsHandler.Delete)

		// Payments
		paymentsHandler := handlers.NewPaymentsHandler(s.repo)
		r.Get("/payments", paymentsHandler.List)
		r.Post("/payments", paymentsHandler.Create)

		// Reconciliation, rate limited per client
		reconcileHandler := handlers.NewReconcileHandler(s.repo, s.svc)
		r.Group(func(r chi.Router) {
			if s.config.RateLimit > 0 {
				r.Use(middleware.NewRateLimiter(s.config.RateLimit, s.config.RateBurst).Handler)
			}
			r.Post("/reconcile", reconcileHandler.Text)
			r.Post("/reconcile/image", reconcileHandler.Image)
			r.Post("/reconcile/batch", reconcileHandler.Batch)
		})

		// Run history
		runsHandler := handlers.NewRunsHandler(s.repo, s.svc)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
		r.Post("/runs/{id}/outcomes/{seq}/confirm", runsHandler.Confirm)

		// Stats
		statsHandler := handlers.NewStatsHandler(s.repo)
		r.Get("/stats", statsHandler.Get)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // image reconciliation waits on OCR
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
