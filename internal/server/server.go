// Package server exposes the layout engine over HTTP.
//
// Routes:
//
//	POST   /v1/layouts                          generate (body: pipeline.Request)
//	GET    /v1/layouts                          list stored layouts
//	GET    /v1/layouts/{id}                     fetch a layout
//	PUT    /v1/layouts/{id}                     store a caller-edited layout
//	DELETE /v1/layouts/{id}                     delete a layout
//	POST   /v1/layouts/{id}/compliance          check a stored layout (?jurisdiction=)
//	POST   /v1/layouts/{id}/rooms               place one more room
//	POST   /v1/check                            check a layout in the body
//	POST   /v1/match                            pattern query (body: store.Pattern)
//	GET    /v1/catalog                          room types and templates
//	GET    /v1/rules                            rulebook (?jurisdiction=)
//	GET    /healthz
//	GET    /metrics                             when a metrics handler is set
//
// Errors are JSON: {"error": {"code": "...", "message": "...", "stage": "..."}}
// with the status derived from the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gmplayout/pkg/pipeline"
	"github.com/matzehuels/gmplayout/pkg/store"
)

// Defaults for [Options].
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
	shutdownTimeout       = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Runner *pipeline.Runner
	Store  store.Store
	// Metrics serves /metrics when set.
	Metrics        http.Handler
	Logger         *log.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// Server is the HTTP API. It holds no per-request state.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	metrics http.Handler
	logger  *log.Logger
	timeout time.Duration
	maxBody int64
	router  chi.Router
}

// New builds the router. Runner and Store are required.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		runner:  opts.Runner,
		store:   opts.Store,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		timeout: opts.RequestTimeout,
		maxBody: opts.MaxBodyBytes,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Use(middleware.AllowContentType("application/json"))

		r.Route("/layouts", func(r chi.Router) {
			r.Post("/", s.handleGenerate)
			r.Get("/", s.handleList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Put("/", s.handlePut)
				r.Delete("/", s.handleDelete)
				r.Post("/compliance", s.handleCheckStored)
				r.Post("/rooms", s.handlePlaceRoom)
			})
		})
		r.Post("/check", s.handleCheck)
		r.Post("/match", s.handleMatch)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/rules", s.handleRules)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
