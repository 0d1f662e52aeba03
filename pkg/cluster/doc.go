// Package cluster computes connected-component labels over a flat edge list.
//
// # Overview
//
// Book editions are identified by integer keys. Each key starts with an
// initial cluster label, and equivalence edges link pairs of keys. This
// package relaxes the labels to a fixpoint: it sweeps the edge list in its
// given order, lowering the destination label whenever the source label is
// strictly smaller, and stops after the first sweep that changes nothing.
// The result is a stable assignment in which every key reachable from
// another along the edges carries the smallest label seen on the way.
//
// # Basic Usage
//
//	out, stats, err := cluster.Propagate(ctx,
//	    []cluster.Assignment[int64]{{Key: 1, Label: 10}, {Key: 2, Label: 20}},
//	    []cluster.Edge[int64]{{From: 1, To: 2}},
//	)
//	// out == [{1 10} {2 10}], stats.Sweeps == 2
//
// The flat shape (four parallel slices of keys, initial labels, edge
// sources and edge destinations) is served by [Vectors]. Named-column
// tables are handled by the table package, which is a thin layer over
// [Propagate].
//
// # Edge Direction
//
// Edges are directed. Labels only flow from source to destination, so a
// component reaches its minimum label everywhere only if that minimum can
// reach every member along edge direction. Producers that emit both
// directions of each link get undirected behavior for free; callers that
// need it otherwise must add the reversed edges themselves.
//
// # Errors
//
// Every edge endpoint must be present in the key set. An unknown endpoint
// fails the whole call with [ErrUnknownKey] before any sweep runs; no
// partial result is returned. Duplicate keys fail with [ErrDuplicateKey].
// [WithMaxSweeps] caps the number of sweeps and reports [ErrNotConverged]
// when the cap is hit.
//
// # Progress
//
// A [Reporter] receives one call when each sweep starts and one when it
// ends, carrying the sweep index, the number of labels lowered and the
// elapsed time. Reporting is write-only and never affects the result.
// The context is checked between sweeps, where the label table is always
// consistent.
package cluster
