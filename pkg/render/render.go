package render

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// Format is an output format of Component.
type Format string

// Supported formats.
const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
)

// DefaultMaxNodes bounds the size of a rendered component.
const DefaultMaxNodes = 500

// Options configures Component.
type Options struct {
	Format Format

	// Detailed adds the initial label below each key.
	Detailed bool

	// MaxNodes rejects larger components. Zero means DefaultMaxNodes,
	// negative means unbounded.
	MaxNodes int
}

// Graph is the sub-graph of one cluster.
type Graph struct {
	Label int64
	Nodes []cluster.Assignment[int64] // keys with their initial labels
	Edges []cluster.Edge[int64]
}

// Extract collects the keys whose final label is label, together with the
// edges between them. initial and final must be in the same key order, as
// returned by cluster.Propagate.
func Extract(initial []cluster.Assignment[int64], edges []cluster.Edge[int64], final []cluster.Assignment[int64], label int64) (*Graph, error) {
	if len(initial) != len(final) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "initial and final assignments differ in length: %d != %d", len(initial), len(final))
	}

	g := &Graph{Label: label}
	member := make(map[int64]bool)
	for i, a := range final {
		if a.Label != label {
			continue
		}
		if initial[i].Key != a.Key {
			return nil, errs.New(errs.ErrCodeInvalidInput, "key order differs at position %d", i)
		}
		member[a.Key] = true
		g.Nodes = append(g.Nodes, initial[i])
	}
	if len(g.Nodes) == 0 {
		return nil, errs.New(errs.ErrCodeNotFound, "no keys carry cluster label %d", label)
	}

	for _, e := range edges {
		if member[e.From] && member[e.To] && e.From != e.To {
			g.Edges = append(g.Edges, e)
		}
	}
	slices.SortFunc(g.Edges, func(a, b cluster.Edge[int64]) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	g.Edges = slices.Compact(g.Edges)
	return g, nil
}

// ToDOT converts g to Graphviz DOT source.
func ToDOT(g *Graph, detailed bool) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", "cluster_"+strconv.FormatInt(g.Label, 10))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := strconv.FormatInt(n.Key, 10)
		if detailed {
			label += "\ninitial: " + strconv.FormatInt(n.Label, 10)
		}
		attrs := fmt.Sprintf("label=%q", label)
		if n.Label == g.Label {
			attrs += ", fillcolor=lightblue"
		}
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", n.Key, attrs)
	}

	if len(g.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  \"%d\" -> \"%d\";\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Component extracts the cluster with the given final label and renders it.
func Component(ctx context.Context, initial []cluster.Assignment[int64], edges []cluster.Edge[int64], final []cluster.Assignment[int64], label int64, opts Options) ([]byte, error) {
	g, err := Extract(initial, edges, final, label)
	if err != nil {
		return nil, err
	}

	limit := opts.MaxNodes
	if limit == 0 {
		limit = DefaultMaxNodes
	}
	if limit > 0 && len(g.Nodes) > limit {
		return nil, errs.New(errs.ErrCodeInvalidInput, "cluster %d has %d keys, more than the limit of %d", label, len(g.Nodes), limit)
	}

	dot := ToDOT(g, opts.Detailed)
	switch opts.Format {
	case FormatDOT, "":
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unsupported render format %q", opts.Format)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag with one whose viewBox
// starts at the origin, so the output scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
