package cluster

import (
	"context"
	"time"

	"golang.org/x/exp/constraints"

	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// Integer is the set of key and label types accepted by the propagator.
type Integer interface {
	constraints.Integer
}

// Assignment pairs a key with its cluster label.
type Assignment[K Integer] struct {
	Key   K `json:"key"`
	Label K `json:"label"`
}

// Edge is a directed link: the label of From may lower the label of To.
type Edge[K Integer] struct {
	From K `json:"from"`
	To   K `json:"to"`
}

// Stats summarizes a propagation run.
type Stats struct {
	Keys     int           `json:"keys"`
	Edges    int           `json:"edges"`
	Sweeps   int           `json:"sweeps"`  // including the final zero-change sweep
	Changed  int           `json:"changed"` // label updates across all sweeps
	Duration time.Duration `json:"duration"`
}

// Propagate relaxes the initial labels over edges until a full sweep makes
// no change and returns the final labels in input key order.
//
// Within a sweep, edges are visited in the given order and updates are
// visible to later edges immediately. A label is lowered only when the
// source label is strictly smaller, so labels never increase and equal
// labels never count as a change.
//
// Errors:
//   - ErrDuplicateKey when assignments repeat a key
//   - ErrUnknownKey when an edge endpoint is not in assignments
//   - ErrNotConverged when WithMaxSweeps is exceeded
//   - ctx.Err() when the context ends between sweeps
//
// On error no assignments are returned.
func Propagate[K Integer](ctx context.Context, assignments []Assignment[K], edges []Edge[K], opts ...Option) ([]Assignment[K], Stats, error) {
	cfg := newConfig(opts)
	start := time.Now()
	stats := Stats{Keys: len(assignments), Edges: len(edges)}

	observe, err := observerFor[K](cfg.observer)
	if err != nil {
		return nil, stats, err
	}

	t, err := newTable(assignments)
	if err != nil {
		return nil, stats, err
	}
	if err := t.check(edges); err != nil {
		return nil, stats, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		stats.Sweeps++
		cfg.reporter.SweepStart(ctx, stats.Sweeps)
		sweepStart := time.Now()
		changed := t.sweep(stats.Sweeps, edges, observe)
		stats.Changed += changed
		cfg.reporter.SweepDone(ctx, Sweep{
			Index:   stats.Sweeps,
			Changed: changed,
			Elapsed: time.Since(sweepStart),
		})

		if changed == 0 {
			break
		}
		if cfg.maxSweeps > 0 && stats.Sweeps >= cfg.maxSweeps {
			return nil, stats, errs.Wrap(errs.ErrCodeNotConverged, ErrNotConverged,
				"still changing after %d sweeps (%d labels in last sweep)", stats.Sweeps, changed)
		}
	}

	out := t.project(assignments)
	stats.Duration = time.Since(start)
	return out, stats, nil
}

// table is the label store for a single run. It is owned by Propagate and
// never shared.
type table[K Integer] struct {
	labels map[K]K
}

func newTable[K Integer](assignments []Assignment[K]) (*table[K], error) {
	labels := make(map[K]K, len(assignments))
	for i, a := range assignments {
		if _, dup := labels[a.Key]; dup {
			return nil, errs.Wrap(errs.ErrCodeDuplicateKey, ErrDuplicateKey,
				"key %d at position %d", a.Key, i)
		}
		labels[a.Key] = a.Label
	}
	return &table[K]{labels: labels}, nil
}

// check verifies that every edge endpoint is a known key.
func (t *table[K]) check(edges []Edge[K]) error {
	for i, e := range edges {
		if _, ok := t.labels[e.From]; !ok {
			return errs.Wrap(errs.ErrCodeUnknownKey, ErrUnknownKey,
				"edge %d (%d -> %d): source key %d", i, e.From, e.To, e.From)
		}
		if _, ok := t.labels[e.To]; !ok {
			return errs.Wrap(errs.ErrCodeUnknownKey, ErrUnknownKey,
				"edge %d (%d -> %d): destination key %d", i, e.From, e.To, e.To)
		}
	}
	return nil
}

// sweep applies the lowering rule to every edge once and returns the number
// of labels changed.
func (t *table[K]) sweep(index int, edges []Edge[K], observe func(Change[K])) int {
	changed := 0
	for _, e := range edges {
		src := t.labels[e.From]
		dst := t.labels[e.To]
		if src < dst {
			t.labels[e.To] = src
			changed++
			if observe != nil {
				observe(Change[K]{Sweep: index, Key: e.To, From: dst, To: src})
			}
		}
	}
	return changed
}

func (t *table[K]) project(assignments []Assignment[K]) []Assignment[K] {
	out := make([]Assignment[K], len(assignments))
	for i, a := range assignments {
		out[i] = Assignment[K]{Key: a.Key, Label: t.labels[a.Key]}
	}
	return out
}

func observerFor[K Integer](v any) (func(Change[K]), error) {
	if v == nil {
		return nil, nil
	}
	fn, ok := v.(func(Change[K]))
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "observer key type %T does not match run key type", v)
	}
	return fn, nil
}
