package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"morningbrief/internal/briefing"
	"morningbrief/internal/chat"
	"morningbrief/internal/config"
	"morningbrief/internal/logger"
	"morningbrief/internal/persistence"
)

const (
	requestTimeout  = 60 * time.Second
	generateTimeout = 180 * time.Second
)

// Deps are the services the HTTP API exposes.
type Deps struct {
	Store     persistence.Store
	Briefings *briefing.Service
	Chat      *chat.Service
	Defaults  persistence.Defaults // Applied when a settings update omits optional fields
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Deps
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(deps Deps, cfg config.Server) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		config: cfg,
		log:    logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  parseDuration(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: parseDuration(cfg.WriteTimeout, generateTimeout),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}
}

// setupRoutes configures routes for the server. Generation gets its own
// timeout because a single model call can outlast the default.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(generateTimeout))
			r.Post("/briefing/generate", s.handleGenerate)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Use(noCache)

			r.Get("/briefing/status", s.handleBriefingStatus)
			r.Get("/briefing/history", s.handleBriefingHistory)
			r.Get("/briefing/{id}", s.handleGetBriefing)
			r.Get("/briefing/{id}/sections", s.handleBriefingSections)

			r.Get("/settings", s.handleGetSettings)
			r.Post("/settings", s.handleSaveSettings)

			r.Post("/chat", s.handleChat)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdminAPI)
				r.Post("/briefing/clear", s.handleClearBriefings)
				r.Post("/briefing/delete-recent", s.handleDeleteRecent)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}
