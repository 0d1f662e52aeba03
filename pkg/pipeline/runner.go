package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/bookclusters/pkg/cache"
	"github.com/matzehuels/bookclusters/pkg/cluster"
	"github.com/matzehuels/bookclusters/pkg/isbn"
	"github.com/matzehuels/bookclusters/pkg/observability"
	"github.com/matzehuels/bookclusters/pkg/table"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to share caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached propagation results. Zero means
	// cache.TTLCluster.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedRun is the cache encoding of a propagation result. Keys are not
// stored; they are implied by the input hash.
type cachedRun struct {
	Labels []int64       `json:"labels"`
	Stats  cluster.Stats `json:"stats"`
}

// Execute runs load → propagate → save.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	keys, edges := opts.Keys, opts.Edges
	if opts.fromFiles() {
		loadStart := time.Now()
		var err error
		keys, edges, err = Load(ctx, opts)
		if err != nil {
			return nil, err
		}
		result.LoadTime = time.Since(loadStart)
		logger.Info("loaded tables", "keys", len(keys), "edges", len(edges), "duration", result.LoadTime.Round(time.Millisecond))
	}
	if opts.Symmetric {
		edges = table.Symmetrize(edges)
	}
	result.Initial = keys
	result.Edges = edges
	result.InputHash = cache.Hash([]byte(table.Hash(keys) + table.HashEdges(edges)))

	// Stage 2: Propagate
	out, stats, hit, err := r.propagate(ctx, logger, result.InputHash, keys, edges, opts)
	if err != nil {
		return nil, err
	}
	result.Assignments = out
	result.Stats = stats
	result.CacheHit = hit
	result.Summary = cluster.Summarize(out)
	result.Hash = table.Hash(out)

	logger.Info("propagated labels",
		"clusters", result.Summary.Clusters,
		"largest", result.Summary.Largest,
		"sweeps", stats.Sweeps,
		"changed", stats.Changed,
		"cached", hit)

	// Stage 3: Save
	if opts.Output != "" {
		if err := table.Save(opts.Output, opts.Columns, out); err != nil {
			return nil, fmt.Errorf("save: %w", err)
		}
		logger.Info("wrote clusters", "path", opts.Output, "rows", len(out))
	}

	return result, nil
}

// propagate returns cached labels when available and runs the propagator
// otherwise.
func (r *Runner) propagate(ctx context.Context, logger *log.Logger, inputHash string, keys []cluster.Assignment[int64], edges []cluster.Edge[int64], opts Options) ([]cluster.Assignment[int64], cluster.Stats, bool, error) {
	key := r.Keyer.ClusterKey(inputHash, cache.ClusterKeyOpts{
		MaxSweeps: opts.MaxSweeps,
		Symmetric: opts.Symmetric,
	})

	if !opts.Refresh {
		if out, stats, ok := r.cached(ctx, logger, key, keys); ok {
			observability.Cache().OnCacheHit(ctx, "cluster")
			return out, stats, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "cluster")
	}

	hooks := observability.Cluster()
	hooks.OnClusterStart(ctx, len(keys), len(edges))
	out, stats, err := cluster.Propagate(ctx, keys, edges,
		cluster.WithMaxSweeps(opts.MaxSweeps),
		cluster.WithReporter(cluster.MultiReporter(
			opts.Reporter,
			cluster.NewLogReporter(logger),
			hookReporter{hooks},
		)),
	)
	hooks.OnClusterComplete(ctx, stats.Sweeps, stats.Changed, stats.Duration, err)
	if err != nil {
		return nil, stats, false, fmt.Errorf("propagate: %w", err)
	}

	labels := make([]int64, len(out))
	for i, a := range out {
		labels[i] = a.Label
	}
	if data, err := json.Marshal(cachedRun{Labels: labels, Stats: stats}); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.clusterTTL()); err != nil {
			logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "cluster", len(data))
		}
	}
	return out, stats, false, nil
}

// cached loads a stored result for key. Entries that do not fit keys are
// ignored.
func (r *Runner) cached(ctx context.Context, logger *log.Logger, key string, keys []cluster.Assignment[int64]) ([]cluster.Assignment[int64], cluster.Stats, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
		return nil, cluster.Stats{}, false
	}
	if !hit {
		return nil, cluster.Stats{}, false
	}

	var run cachedRun
	if err := json.Unmarshal(data, &run); err != nil || len(run.Labels) != len(keys) {
		return nil, cluster.Stats{}, false
	}
	out := make([]cluster.Assignment[int64], len(keys))
	for i, a := range keys {
		out[i] = cluster.Assignment[int64]{Key: a.Key, Label: run.Labels[i]}
	}
	return out, run.Stats, true
}

// ValidateISBNs checks each string with isbn.IsValid. Results for the same
// batch are cached.
func (r *Runner) ValidateISBNs(ctx context.Context, batch []string) ([]bool, error) {
	raw, err := json.Marshal(batch)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.ValidationKey(cache.Hash(raw))

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var out []bool
		if json.Unmarshal(data, &out) == nil && len(out) == len(batch) {
			observability.Cache().OnCacheHit(ctx, "isbn")
			return out, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "isbn")

	out := isbn.ValidateBatch(batch)
	if data, err := json.Marshal(out); err == nil {
		if r.Cache.Set(ctx, key, data, cache.TTLValidation) == nil {
			observability.Cache().OnCacheSet(ctx, "isbn", len(data))
		}
	}
	return out, nil
}

func (r *Runner) clusterTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLCluster
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hookReporter forwards sweeps to the observability hooks.
type hookReporter struct {
	hooks observability.ClusterHooks
}

func (h hookReporter) SweepStart(context.Context, int) {}

func (h hookReporter) SweepDone(ctx context.Context, s cluster.Sweep) {
	h.hooks.OnSweep(ctx, s.Index, s.Changed, s.Elapsed)
}
