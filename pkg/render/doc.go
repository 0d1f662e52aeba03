// Package render draws a single cluster as a node-link diagram.
//
// # Overview
//
// Large clusters are usually the interesting ones when checking a
// propagation run: a bad edge can merge unrelated works into one label. This
// package extracts the sub-graph for one final label and renders it with
// Graphviz so the merge path is visible.
//
//	dot, err := render.Component(ctx, initial, edges, final, label, render.Options{Format: render.FormatDOT})
//	svg, err := render.Component(ctx, initial, edges, final, label, render.Options{Format: render.FormatSVG})
//
// # DOT Format
//
// The generated DOT uses left-to-right layout with rounded box nodes labeled
// by key. Keys whose initial label already equals the cluster label are the
// sources the label spread from; they are filled.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package render
