// Package api serves puzzle generation over HTTP.
//
// Routes:
//
//	GET    /healthz                    liveness and build info
//	POST   /v1/puzzles                 generate from a JSON options body
//	GET    /v1/puzzles                 list stored runs, newest first
//	GET    /v1/puzzles/{id}            one stored run with its document
//	GET    /v1/puzzles/{id}/{format}   render a stored run (svg, json, dot, interlock)
//	DELETE /v1/puzzles/{id}            delete a stored run
//
// The run routes other than POST need a [store.Store]; without one they
// answer 501.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/jigsaw/pkg/observability"
	"github.com/matzehuels/jigsaw/pkg/pipeline"
	"github.com/matzehuels/jigsaw/pkg/store"
)

// Defaults applied by [New].
const (
	DefaultMaxPieces      = 2500
	DefaultRequestTimeout = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store // optional
	Logger *log.Logger

	// MaxPieces caps every request's piece count, whatever the body asks for.
	MaxPieces int

	// RequestTimeout bounds a single generation.
	RequestTimeout time.Duration
}

// Server is the HTTP front end of the pipeline.
type Server struct {
	runner    *pipeline.Runner
	store     store.Store
	logger    *log.Logger
	maxPieces int
	timeout   time.Duration
}

// New creates a server. A nil runner gets an uncached one.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.MaxPieces <= 0 {
		cfg.MaxPieces = DefaultMaxPieces
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Server{
		runner:    cfg.Runner,
		store:     cfg.Store,
		logger:    cfg.Logger,
		maxPieces: cfg.MaxPieces,
		timeout:   cfg.RequestTimeout,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(observe)

		r.Get("/healthz", s.handle(s.health))
		r.Post("/v1/puzzles", s.handle(s.createPuzzle))
		r.Get("/v1/puzzles", s.handle(s.listPuzzles))
		r.Get("/v1/puzzles/{id}", s.handle(s.getPuzzle))
		r.Get("/v1/puzzles/{id}/{format}", s.handle(s.renderPuzzle))
		r.Delete("/v1/puzzles/{id}", s.handle(s.deletePuzzle))
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe reports every routed request to the HTTP hooks. It runs inside
// the route group so the matched pattern is known.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := chi.RouteContext(r.Context()).RoutePattern()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}
