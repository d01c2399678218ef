// Package server exposes an api.Backend over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/events"
)

// DefaultCORSOrigins allows local frontends on any port.
var DefaultCORSOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// Options configures a Server.
type Options struct {
	Backend     api.Backend
	Bus         *events.Bus
	Logger      *zap.Logger
	Metrics     *Metrics
	CORSOrigins []string
}

// Server routes HTTP requests to the backend.
type Server struct {
	backend  api.Backend
	bus      *events.Bus
	logger   *zap.Logger
	metrics  *Metrics
	validate *validator.Validate
	origins  []string
}

// New creates a Server. A nil Bus disables /api/events; a nil Metrics gets a
// fresh registry.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}
	return &Server{
		backend:  opts.Backend,
		bus:      opts.Bus,
		logger:   logger.Named("server"),
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		origins:  origins,
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(s.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", s.listEvents)

		r.Route("/persons", func(r chi.Router) {
			r.Get("/", s.listPersons)
			r.Post("/", s.createPerson)

			r.Route("/{personID}", func(r chi.Router) {
				r.Put("/", s.updatePerson)
				r.Get("/conversations", s.listConversations)
				r.Post("/conversations", s.createConversation)
				r.Get("/memories", s.listMemories)
				r.Post("/memories", s.createMemory)
			})
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
