// Package pkg provides the libraries behind bookclusters.
//
// # Overview
//
// bookclusters groups ISBNs into clusters. Every ISBN starts with a cluster
// label; a relation table says which ISBNs belong together. Labels flow along
// the relation edges, each ISBN keeping the smallest label that reaches it,
// until a full pass over the edges changes nothing.
//
// # Architecture
//
//	key table + edge table (csv/json, optionally compressed)
//	         ↓
//	    [table] package (decode, derive initial labels, symmetrize)
//	         ↓
//	    [cluster] package (min-label propagation to the fixpoint)
//	         ↓
//	    [table] / [store/mongo] / [render] (write, export, inspect)
//
// [pipeline] ties the stages together with caching ([cache]) and
// observability hooks ([observability]); the CLI and the HTTP server both run
// through it.
//
// # Quick Start
//
//	keys := []cluster.Assignment[int64]{{Key: 1, Label: 1}, {Key: 2, Label: 2}}
//	edges := []cluster.Edge[int64]{{From: 1, To: 2}}
//	final, stats, err := cluster.Propagate(ctx, keys, edges)
//
// # Main Packages
//
// [cluster] - The propagator, generic over integer key types, with sweep
// reporting, a sweep limit and a per-change observer.
//
// [table] - Key and edge tables in CSV, JSON and JSON Lines, with gzip, zstd
// and lz4 decompression by file suffix.
//
// [isbn] - ISBN-10 and ISBN-13 check digits.
//
// [pipeline] - Load, propagate and save with result caching.
//
// [cache] - File, Redis and no-op caches behind one interface.
//
// [store/mongo] - Export of the final cluster table to MongoDB.
//
// [render] - Graphviz rendering of a single cluster.
//
// [observability] - Hook interfaces with a Prometheus implementation.
//
// [errors] - Coded errors shared by all packages.
//
// [buildinfo] - Version information set at build time.
//
// [cluster]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/cluster
// [table]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/table
// [isbn]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/isbn
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/cache
// [store/mongo]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/store/mongo
// [render]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/bookclusters/pkg/buildinfo
package pkg
