package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookclusters/pkg/pipeline"
	"github.com/matzehuels/bookclusters/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	label    int64  // final cluster label to draw
	key      int64  // alternatively, draw the cluster containing this key
	byKey    bool   // key was given instead of label
	format   string // dot or svg; empty infers from output
	output   string // output file; empty writes to stdout
	detailed bool   // show initial labels
	maxNodes int    // refuse larger clusters
}

// renderCommand creates the render command for drawing one cluster.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		in   inputFlags
		opts renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw one cluster's sub-graph as DOT or SVG",
		Long: `Draw one cluster's sub-graph as DOT or SVG.

The tables are clustered first (using the cache when possible), then the keys
of the selected cluster are drawn with the edges between them. Keys whose
initial label equals the cluster label are highlighted.`,
		Example: `  bookclusters render -k isbns.csv -e edges.csv --label 17 -o cluster17.svg
  bookclusters render -k isbns.csv -e edges.csv --isbn 9780306406157 --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("label") == flags.Changed("isbn") {
				return fmt.Errorf("exactly one of --label and --isbn is required")
			}
			opts.byKey = flags.Changed("isbn")
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), c.options(cmd, in), in.noCache, opts)
		},
	}

	in.register(cmd)
	cmd.Flags().Int64Var(&opts.label, "label", 0, "final cluster label to draw")
	cmd.Flags().Int64Var(&opts.key, "isbn", 0, "draw the cluster containing this key")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot or svg (default from --output, else dot)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show the initial label of every key")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", render.DefaultMaxNodes, "refuse clusters with more keys (negative: unbounded)")

	return cmd
}

// runRender clusters the tables and renders the selected cluster.
func (c *CLI) runRender(ctx context.Context, out io.Writer, opts pipeline.Options, noCache bool, ro renderOpts) error {
	format, err := renderFormat(ro.format, ro.output)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}

	label := ro.label
	if ro.byKey {
		found := false
		for _, a := range result.Assignments {
			if a.Key == ro.key {
				label, found = a.Label, true
				break
			}
		}
		if !found {
			return fmt.Errorf("key %d is not in %s", ro.key, opts.KeysPath)
		}
	}

	data, err := render.Component(ctx, result.Initial, result.Edges, result.Assignments, label, render.Options{
		Format:   format,
		Detailed: ro.detailed,
		MaxNodes: ro.maxNodes,
	})
	if err != nil {
		return fmt.Errorf("render cluster %d: %w", label, err)
	}

	if ro.output == "" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(ro.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", ro.output, err)
	}
	printSuccess("Rendered cluster %d", label)
	printFile(ro.output)
	return nil
}

// renderFormat resolves the output format from the flag or the output
// extension.
func renderFormat(flag, output string) (render.Format, error) {
	if flag == "" {
		flag = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	switch render.Format(strings.ToLower(flag)) {
	case "", render.FormatDOT, "gv":
		return render.FormatDOT, nil
	case render.FormatSVG:
		return render.FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported render format %q (use dot or svg)", flag)
}
