// Package server exposes PEP validation and conversion over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pepkit/eido/internal/conversion"
	"github.com/pepkit/eido/internal/pep"
	"github.com/pepkit/eido/internal/schema"
	"github.com/pepkit/eido/internal/validation"
)

const (
	defaultAddr           = ":8080"
	defaultMaxUploadBytes = 32 << 20
	shutdownTimeout       = 10 * time.Second
)

// Config holds the dependencies and limits of a Server. Zero fields get
// defaults in New.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	// SampleTableIndex names the sample column of uploaded tables.
	SampleTableIndex string
	// AllowLocalSchemas lets clients name schema files on the server's
	// filesystem. Otherwise only URLs and catalog names are accepted.
	AllowLocalSchemas bool
	// FetchRetries is how often a remote schema fetch is retried after a
	// network error or a 5xx response. Zero disables retrying.
	FetchRetries int

	Logger    *zap.Logger
	Validator *validation.Validator
	Filters   *conversion.Registry
	// Registry receives the server's collectors; a fresh one is created
	// when nil.
	Registry *prometheus.Registry
}

// ErrLocalSchema is returned when a request refers to a schema on the
// server's filesystem, directly, through imports or through a $ref, and
// local schemas are not allowed.
var ErrLocalSchema = errors.New("local schema references are not allowed")

type remoteOnly struct {
	next schema.Fetcher
}

func (f remoteOnly) Fetch(ref schema.Ref) (schema.Document, error) {
	if !ref.IsURL() {
		return nil, fmt.Errorf("%w: %s", ErrLocalSchema, ref)
	}
	return f.next.Fetch(ref)
}

// Server is the HTTP front-end.
type Server struct {
	cfg     Config
	log     *zap.Logger
	metrics *metrics
	router  chi.Router
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.SampleTableIndex == "" {
		cfg.SampleTableIndex = pep.DefaultSampleTableIndex
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Validator == nil {
		base := schema.NewFetcher()
		base.Retry.MaxRetries = cfg.FetchRetries
		var fetcher schema.Fetcher = base
		if !cfg.AllowLocalSchemas {
			fetcher = remoteOnly{next: fetcher}
		}
		loader := schema.NewLoader(schema.WithFetcher(fetcher), schema.WithLogger(cfg.Logger))
		cfg.Validator = validation.New(validation.WithLogger(cfg.Logger), validation.WithLoader(loader))
	}
	if cfg.Filters == nil {
		cfg.Filters = conversion.DefaultRegistry()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		cfg:     cfg,
		log:     cfg.Logger.Named("server"),
		metrics: newMetrics(cfg.Registry),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(s.log))
	r.Use(chimw.Recoverer)

	r.Method(http.MethodGet, "/healthz", s.metrics.instrument("healthz", http.HandlerFunc(s.handleHealth)))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/version", s.metrics.instrument("version", http.HandlerFunc(s.handleVersion)))
		r.Method(http.MethodGet, "/schemas", s.metrics.instrument("schemas", http.HandlerFunc(s.handleSchemas)))
		r.Method(http.MethodGet, "/filters", s.metrics.instrument("filters", http.HandlerFunc(s.handleFilters)))
		r.Method(http.MethodPost, "/validate", s.metrics.instrument("validate", http.HandlerFunc(s.handleValidate)))
		r.Method(http.MethodPost, "/convert/{filter}", s.metrics.instrument("convert", http.HandlerFunc(s.handleConvert)))
	})
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
