package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	"github.com/matzehuels/bookclusters/pkg/observability"
	"github.com/matzehuels/bookclusters/pkg/table"
)

// Load reads the key and edge tables named in opts concurrently.
func Load(ctx context.Context, opts Options) ([]cluster.Assignment[int64], []cluster.Edge[int64], error) {
	var (
		keys  []cluster.Assignment[int64]
		edges []cluster.Edge[int64]
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loadTable(ctx, opts, "keys", opts.KeysPath, func() (n int, err error) {
			keys, err = table.LoadKeys(opts.KeysPath, opts.Columns)
			return len(keys), err
		})
	})
	g.Go(func() error {
		return loadTable(ctx, opts, "edges", opts.EdgesPath, func() (n int, err error) {
			edges, err = table.LoadEdges(opts.EdgesPath, opts.Columns)
			return len(edges), err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return keys, edges, nil
}

// loadTable wraps one table read with hooks and logging.
func loadTable(ctx context.Context, opts Options, kind, path string, read func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hooks := observability.Cluster()
	hooks.OnLoadStart(ctx, kind, path)

	start := time.Now()
	rows, err := read()
	hooks.OnLoadComplete(ctx, kind, path, rows, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("load %s: %w", kind, err)
	}

	opts.Logger.Debug("loaded table", "kind", kind, "path", path, "rows", rows, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
