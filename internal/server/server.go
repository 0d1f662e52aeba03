// Package server exposes the cluster pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz                        liveness and build info
//	GET  /metrics                        Prometheus metrics
//	POST /v1/clusters                    propagate labels over a JSON body
//	POST /v1/isbn/validate               check ISBN checksums in bulk
//	GET  /v1/isbn/{id}/cluster           stored cluster of one key (needs a store)
//	GET  /v1/clusters/{label}/members    stored members of one cluster (needs a store)
//
// Every response carries an X-Request-ID header. Errors are JSON objects with
// an error message and a code from pkg/errors.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	"github.com/matzehuels/bookclusters/pkg/pipeline"
)

// Store is the read side of the cluster export.
type Store interface {
	Lookup(ctx context.Context, key int64) (cluster.Assignment[int64], bool, error)
	Members(ctx context.Context, label int64) ([]int64, error)
}

// Options configures New.
type Options struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// Store enables the lookup routes. Optional.
	Store Store

	// Gatherer serves /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Defaults applied to requests that leave them unset.
	MaxSweeps int
	Symmetric bool

	// MaxBodyBytes limits request bodies. Zero means 64 MiB.
	MaxBodyBytes int64
}

// Server handles HTTP requests.
type Server struct {
	opts Options
}

// New creates a server. opts.Runner is required.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 20
	}
	return &Server{opts: opts}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/clusters", s.handleCluster)
		r.Get("/clusters/{label}/members", s.handleMembers)
		r.Post("/isbn/validate", s.handleValidate)
		r.Get("/isbn/{id}/cluster", s.handleLookup)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.opts.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
