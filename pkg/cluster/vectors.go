package cluster

import (
	"context"

	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// Vectors runs Propagate over four parallel slices: keys with their initial
// labels, and edge sources with their destinations. It returns the final
// label of each key, aligned with keys.
func Vectors[K Integer](ctx context.Context, keys, initial, lefts, rights []K, opts ...Option) ([]K, Stats, error) {
	if len(keys) != len(initial) {
		return nil, Stats{}, errs.Wrap(errs.ErrCodeInvalidInput, ErrLengthMismatch,
			"%d keys but %d initial labels", len(keys), len(initial))
	}
	if len(lefts) != len(rights) {
		return nil, Stats{}, errs.Wrap(errs.ErrCodeInvalidInput, ErrLengthMismatch,
			"%d edge sources but %d edge destinations", len(lefts), len(rights))
	}

	assignments := make([]Assignment[K], len(keys))
	for i, k := range keys {
		assignments[i] = Assignment[K]{Key: k, Label: initial[i]}
	}
	edges := make([]Edge[K], len(lefts))
	for i, l := range lefts {
		edges[i] = Edge[K]{From: l, To: rights[i]}
	}

	out, stats, err := Propagate(ctx, assignments, edges, opts...)
	if err != nil {
		return nil, stats, err
	}
	labels := make([]K, len(out))
	for i, a := range out {
		labels[i] = a.Label
	}
	return labels, stats, nil
}
