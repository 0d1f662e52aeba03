package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookclusters/pkg/pipeline"
	"github.com/matzehuels/bookclusters/pkg/store/mongo"
	"github.com/matzehuels/bookclusters/pkg/table"
)

// inputFlags are the table and propagation flags shared by cluster and render.
type inputFlags struct {
	keys      string
	edges     string
	maxSweeps int
	symmetric bool
	refresh   bool
	noCache   bool
	columns   table.Columns
}

func (f *inputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.keys, "keys", "k", "", "key table (csv, json, jsonl; optionally .gz, .zst, .lz4)")
	flags.StringVarP(&f.edges, "edges", "e", "", "edge table (csv, json, jsonl; optionally .gz, .zst, .lz4)")
	flags.IntVar(&f.maxSweeps, "max-sweeps", 0, "fail if the fixpoint is not reached within n sweeps (0: unbounded)")
	flags.BoolVar(&f.symmetric, "symmetric", false, "add the reverse of every edge before propagating")
	flags.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable caching")

	flags.StringVar(&f.columns.Key, "key-col", "", "key column (default isbn_id)")
	flags.StringVar(&f.columns.Label, "label-col", "", "initial label column (default cluster)")
	flags.StringVar(&f.columns.Record, "record-col", "", "derive initial labels as the minimum of this column per key")
	flags.StringVar(&f.columns.Left, "left-col", "", "edge source column (default left_isbn)")
	flags.StringVar(&f.columns.Right, "right-col", "", "edge destination column (default right_isbn)")

	cmd.MarkFlagRequired("keys")
	cmd.MarkFlagRequired("edges")
}

// options merges the flags over the loaded configuration.
func (c *CLI) options(cmd *cobra.Command, f inputFlags) pipeline.Options {
	opts := pipeline.Options{
		KeysPath:  f.keys,
		EdgesPath: f.edges,
		Columns:   c.Config.Columns,
		MaxSweeps: c.Config.Cluster.MaxSweeps,
		Symmetric: c.Config.Cluster.Symmetric,
		Refresh:   f.refresh,
		Logger:    loggerFromContext(cmd.Context()),
	}

	flags := cmd.Flags()
	if flags.Changed("max-sweeps") {
		opts.MaxSweeps = f.maxSweeps
	}
	if flags.Changed("symmetric") {
		opts.Symmetric = f.symmetric
	}
	if f.columns.Key != "" {
		opts.Columns.Key = f.columns.Key
	}
	if f.columns.Record != "" {
		opts.Columns.Record = f.columns.Record
		opts.Columns.Label = ""
	}
	if f.columns.Label != "" {
		opts.Columns.Label = f.columns.Label
	}
	if f.columns.Left != "" {
		opts.Columns.Left = f.columns.Left
	}
	if f.columns.Right != "" {
		opts.Columns.Right = f.columns.Right
	}
	return opts
}

// clusterCommand creates the cluster command.
func (c *CLI) clusterCommand() *cobra.Command {
	var (
		in     inputFlags
		output string
		report string
		export bool
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Propagate cluster labels to the fixpoint",
		Long: `Propagate cluster labels to the fixpoint.

Every key starts with the label from the key table. Each sweep walks the edge
table in order and lowers the destination's label to the source's label when
it is smaller. Sweeps repeat until one changes nothing, so every key ends with
the smallest label that can reach it.

The key table needs the columns isbn_id and cluster; the edge table needs
left_isbn and right_isbn. Use the --*-col flags or the [columns] config
section for other layouts.

Results are cached by the content of both tables.`,
		Example: `  bookclusters cluster -k isbns.csv.zst -e edges.csv.zst -o clusters.csv
  bookclusters cluster -k isbns.csv -e edges.csv --symmetric --report -
  bookclusters cluster -k isbns.csv -e edges.csv -o clusters.csv --export`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, in)
			opts.Output = output
			return c.runCluster(cmd.Context(), cmd.OutOrStdout(), opts, in.noCache, report, export)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the final table (format from the extension)")
	cmd.Flags().StringVar(&report, "report", "", "write the run report to a file (- for stdout)")
	cmd.Flags().BoolVar(&export, "export", false, "replace the MongoDB cluster collection with the result (needs store.mongo_uri)")

	return cmd
}

// runCluster executes the pipeline and reports the result.
func (c *CLI) runCluster(ctx context.Context, out io.Writer, opts pipeline.Options, noCache bool, report string, export bool) error {
	if export && c.Config.Store.MongoURI == "" {
		return fmt.Errorf("--export needs store.mongo_uri in the config file")
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(opts.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	prog.done(fmt.Sprintf("Propagated %d labels", len(result.Assignments)))

	printSuccess("Clustered %d keys", len(result.Assignments))
	printStats(len(result.Assignments), len(result.Edges), result.Stats.Sweeps, result.Summary.Clusters, result.CacheHit)
	printKeyValue("Largest", fmt.Sprintf("%d keys (cluster %d)", result.Summary.Largest, result.Summary.LargestLabel))
	printKeyValue("Singletons", fmt.Sprintf("%d", result.Summary.Singletons))
	printKeyValue("Hash", result.Hash)
	if opts.Output != "" {
		printFile(opts.Output)
	}

	if report != "" {
		if err := writeReport(out, result, report); err != nil {
			return err
		}
	}

	if export {
		if err := c.export(ctx, result); err != nil {
			return err
		}
	}

	if result.Summary.Largest > 1 {
		printNextStep("Inspect the largest cluster", fmt.Sprintf("%s render -k %s -e %s --label %d",
			appName, opts.KeysPath, opts.EdgesPath, result.Summary.LargestLabel))
	}
	return nil
}

// writeReport writes the run report to path, or to out for "-".
func writeReport(out io.Writer, result *pipeline.Result, path string) (err error) {
	if path == "-" {
		return result.WriteReport(out)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := result.WriteReport(f); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	printFile(path)
	return nil
}

// export replaces the MongoDB cluster collection with the result.
func (c *CLI) export(ctx context.Context, result *pipeline.Result) error {
	spinner := newSpinnerWithContext(ctx, "Exporting to MongoDB...")
	spinner.Start()

	store, err := mongo.Open(ctx, c.Config.Store.MongoOptions())
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.Save(ctx, result.RunID, result.Assignments); err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export: %w", err)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Exported %d rows to %s.%s",
		len(result.Assignments), c.Config.Store.Database, c.Config.Store.Collection))
	return nil
}
