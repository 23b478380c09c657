// Package api exposes the tracker over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/tracker"
)

// Config controls the listener and request limits.
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxRequestSize int64
}

// Server routes HTTP requests to a tracker.Service.
type Server struct {
	cfg  Config
	svc  *tracker.Service
	auth tracker.Authenticator
	log  logger.Logger
}

// NewServer creates a Server. Zero config values get defaults.
func NewServer(cfg Config, svc *tracker.Service, auth tracker.Authenticator, log logger.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = 1 << 20
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{cfg: cfg, svc: svc, auth: auth, log: log}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(s.corsOptions()))
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/log", s.handleLog)
		r.Post("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Get("/stats", s.handleStats)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", s.handleListPages)
			r.Get("/{id}/stats", s.handlePageStats)
		})

		r.Route("/activity", func(r chi.Router) {
			r.Get("/recent", s.handleRecentActivity)
			r.Get("/today", s.handleTodaysActivity)
			r.Get("/week", s.handleWeekActivity)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Get("/{id}", s.handleGetProject)
			r.Patch("/{id}", s.handleUpdateProject)
			r.Delete("/{id}", s.handleDeleteProject)
		})
	})

	return r
}

func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	// Credentials cannot be combined with a wildcard origin.
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			opts.AllowCredentials = false
		}
	}
	return opts
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
