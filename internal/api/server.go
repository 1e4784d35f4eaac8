// Package api provides the HTTP API server and handlers for the signal
// server.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ficai/signal-server/internal/config"
	"github.com/ficai/signal-server/internal/ratelimit"
	"github.com/ficai/signal-server/internal/service"
)

// DatabasePinger reports whether the backing database is reachable.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService   *service.AuthService
	signalService *service.SignalService
	searchService *service.TagSearchService
	metaService   *service.MetaService
	db            DatabasePinger
	cookieDomain  string
	credLimiter   *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg *config.Config,
	authService *service.AuthService,
	signalService *service.SignalService,
	searchService *service.TagSearchService,
	metaService *service.MetaService,
	db DatabasePinger,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:   authService,
		signalService: signalService,
		searchService: searchService,
		metaService:   metaService,
		db:            db,
		cookieDomain:  cfg.Auth.CookieDomain,
		// Password hashing is the most expensive thing we do, so the
		// credential endpoints get their own per-IP budget.
		credLimiter: ratelimit.New(1, 10),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(60 * time.Second))

	// The browser extension calls us from story sites, so credentialed
	// cross-origin requests are the normal case.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/v1", func(r chi.Router) {
		// Registration (public, rate limited).
		r.Group(func(r chi.Router) {
			r.Use(s.limitCredentialRequests)
			r.Post("/accounts", s.handleCreateAccount)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.limitCredentialRequests)
				r.Post("/", s.handleCreateSession)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
			})
		})

		r.Route("/signals", func(r chi.Router) {
			r.With(s.optionalSession).Get("/", s.handleGetSignals)
			r.With(s.requireSession).Patch("/", s.handlePatchSignals)
		})

		r.Get("/tags", s.handleSearchTags)
		r.Get("/meta", s.handleGetMeta)
	})
}
