package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/metrics"
	"github.com/poiesic/motif/scan"
	"github.com/poiesic/motif/search"
	"github.com/rs/cors"
)

// Searcher answers title and similarity queries. *search.Searcher
// implements it.
type Searcher interface {
	FindSongsWithMonitor(ctx context.Context, query string, maxResults int, monitor search.SearchMonitor) ([]*core.SearchResult, error)
	FindSimilarSongs(ctx context.Context, titles []string, topN int) ([]*core.SearchResult, error)
}

// Scanner runs pattern scans. *scan.Scanner implements it.
type Scanner interface {
	ScanWithMonitor(ctx context.Context, paths []string, query []core.Event, monitor scan.ScanMonitor) (*core.MatchResult, error)
}

var (
	_ Searcher = (*search.Searcher)(nil)
	_ Scanner  = (*scan.Scanner)(nil)
)

// Server is the motif HTTP API.
type Server struct {
	searcher       Searcher
	scanner        Scanner
	manifest       []string
	metrics        *metrics.Collector
	allowedOrigins []string
	maxMatchPaths  int
	logger         *slog.Logger
	handler        http.Handler
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "server")
		return nil
	}
}

// WithManifest sets the corpus paths scanned when a match request names
// none.
func WithManifest(paths []string) Option {
	return func(s *Server) error {
		s.manifest = paths
		return nil
	}
}

// WithMetrics sets the collector served on /metrics and fed by requests.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Server) error {
		s.metrics = collector
		return nil
	}
}

// WithAllowedOrigins sets the CORS allowed origins. Default is "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) error {
		s.allowedOrigins = origins
		return nil
	}
}

// DefaultMaxMatchPaths bounds the paths a single match request may name.
const DefaultMaxMatchPaths = 1000

// WithMaxMatchPaths sets how many paths a match request may name.
// Default is DefaultMaxMatchPaths.
func WithMaxMatchPaths(n int) Option {
	return func(s *Server) error {
		if n < 1 {
			return fmt.Errorf("max match paths must be positive, got %d", n)
		}
		s.maxMatchPaths = n
		return nil
	}
}

// New creates a Server.
func New(searcher Searcher, scanner Scanner, opts ...Option) (*Server, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if scanner == nil {
		return nil, ErrScannerRequired
	}

	s := &Server{
		searcher:       searcher,
		scanner:        scanner,
		allowedOrigins: []string{"*"},
		maxMatchPaths:  DefaultMaxMatchPaths,
		logger:         slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector(metrics.DefaultConfig())
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/similar", s.handleSimilar).Methods(http.MethodPost)
	router.HandleFunc("/match", s.handleMatch).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
	return s, nil
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
