// Package pipeline provides the load → propagate → save pipeline behind
// both the CLI and the HTTP server.
//
// # Architecture
//
// A run has three stages:
//
//  1. Load: read the key table and the edge table (concurrently)
//  2. Propagate: relax labels to the fixpoint with cluster.Propagate
//  3. Save: optionally write the final table to Output
//
// Propagation results are cached by the content hash of the decoded inputs,
// so rerunning over unchanged tables skips stage 2.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    KeysPath:  "isbns.csv.zst",
//	    EdgesPath: "edges.csv.zst",
//	    Output:    "clusters.csv",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary.Clusters)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
	"github.com/matzehuels/bookclusters/pkg/table"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// Input comes either from files (KeysPath and EdgesPath) or from memory
// (Keys and Edges), never both.
type Options struct {
	// File input
	KeysPath  string        `json:"keys_path,omitempty"`
	EdgesPath string        `json:"edges_path,omitempty"`
	Columns   table.Columns `json:"columns"`

	// In-memory input
	Keys  []cluster.Assignment[int64] `json:"keys,omitempty"`
	Edges []cluster.Edge[int64]       `json:"edges,omitempty"`

	// Propagation
	MaxSweeps int  `json:"max_sweeps,omitempty"` // 0: run to the fixpoint
	Symmetric bool `json:"symmetric,omitempty"`  // add the reverse of every edge
	Refresh   bool `json:"refresh,omitempty"`    // ignore cached results

	// Output path; format and compression follow the extension. Empty skips
	// saving.
	Output string `json:"output,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger      `json:"-"`
	Reporter cluster.Reporter `json:"-"`
}

// fromFiles reports whether the run reads its input from files.
func (o *Options) fromFiles() bool {
	return o.KeysPath != "" || o.EdgesPath != ""
}

// ValidateAndSetDefaults checks the input selection and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Columns == (table.Columns{}) {
		o.Columns = table.DefaultColumns()
	}
	if o.fromFiles() {
		if o.KeysPath == "" || o.EdgesPath == "" {
			return errs.New(errs.ErrCodeInvalidInput, "both a key table and an edge table are required")
		}
		if o.Keys != nil || o.Edges != nil {
			return errs.New(errs.ErrCodeInvalidInput, "file input and in-memory input are mutually exclusive")
		}
		for _, p := range []string{o.KeysPath, o.EdgesPath} {
			if err := errs.ValidatePath(p); err != nil {
				return err
			}
		}
		if err := o.Columns.Validate(); err != nil {
			return err
		}
	}
	if o.Output != "" {
		if _, _, err := table.DetectFormat(o.Output); err != nil {
			return err
		}
	}
	if o.MaxSweeps < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max sweeps must not be negative, got %d", o.MaxSweeps)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Reporter == nil {
		o.Reporter = cluster.NopReporter{}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run in logs and exports.
	RunID string `json:"run_id"`

	// Initial and Edges are the inputs as propagated. Edges includes the
	// reversed edges when Symmetric was set.
	Initial []cluster.Assignment[int64] `json:"-"`
	Edges   []cluster.Edge[int64]       `json:"-"`

	// Assignments holds the final labels in key table order.
	Assignments []cluster.Assignment[int64] `json:"assignments"`

	Stats   cluster.Stats          `json:"stats"`
	Summary cluster.Summary[int64] `json:"summary"`

	// InputHash identifies the decoded inputs; Hash identifies the output.
	InputHash string `json:"input_hash"`
	Hash      string `json:"hash"`

	// CacheHit is set when Assignments came from the cache.
	CacheHit bool `json:"cache_hit"`

	LoadTime time.Duration `json:"load_time"`
}
