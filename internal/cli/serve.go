package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookclusters/internal/server"
	"github.com/matzehuels/bookclusters/pkg/observability"
	"github.com/matzehuels/bookclusters/pkg/observability/prom"
	"github.com/matzehuels/bookclusters/pkg/store/mongo"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clustering API over HTTP",
		Long: `Serve the clustering API over HTTP.

Routes:
  GET  /healthz
  GET  /metrics
  POST /v1/clusters
  POST /v1/isbn/validate
  GET  /v1/isbn/{id}/cluster          (needs store.mongo_uri)
  GET  /v1/clusters/{label}/members   (needs store.mongo_uri)

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires metrics, the cache and the optional store into the server.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if _, err := prom.Install(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	defer observability.Reset()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := server.Options{
		Runner:       runner,
		Logger:       loggerFromContext(ctx),
		Gatherer:     reg,
		MaxSweeps:    c.Config.Cluster.MaxSweeps,
		Symmetric:    c.Config.Cluster.Symmetric,
		MaxBodyBytes: c.Config.Server.MaxBodyBytes,
	}

	if c.Config.Store.MongoURI != "" {
		store, err := mongo.Open(ctx, c.Config.Store.MongoOptions())
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
		opts.Store = store
		c.Logger.Info("lookup routes enabled", "database", c.Config.Store.Database, "collection", c.Config.Store.Collection)
	}

	srv := server.New(opts)
	return srv.ListenAndServe(ctx, addr, c.Config.Server.ReadTimeout, c.Config.Server.WriteTimeout)
}
