package render

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

func fixture(t *testing.T) (initial []cluster.Assignment[int64], edges []cluster.Edge[int64], final []cluster.Assignment[int64]) {
	t.Helper()
	initial = []cluster.Assignment[int64]{{Key: 10, Label: 1}, {Key: 11, Label: 2}, {Key: 12, Label: 3}, {Key: 20, Label: 9}}
	edges = []cluster.Edge[int64]{{From: 10, To: 11}, {From: 11, To: 12}, {From: 10, To: 11}, {From: 12, To: 12}, {From: 11, To: 10}}
	final, _, err := cluster.Propagate(context.Background(), initial, edges)
	if err != nil {
		t.Fatal(err)
	}
	return initial, edges, final
}

func TestExtract(t *testing.T) {
	initial, edges, final := fixture(t)

	g, err := Extract(initial, edges, final, 1)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	wantNodes := []cluster.Assignment[int64]{{Key: 10, Label: 1}, {Key: 11, Label: 2}, {Key: 12, Label: 3}}
	if !reflect.DeepEqual(g.Nodes, wantNodes) {
		t.Errorf("Nodes = %v, want %v", g.Nodes, wantNodes)
	}
	wantEdges := []cluster.Edge[int64]{{From: 10, To: 11}, {From: 11, To: 10}, {From: 11, To: 12}}
	if !reflect.DeepEqual(g.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", g.Edges, wantEdges)
	}
}

func TestExtractErrors(t *testing.T) {
	initial, edges, final := fixture(t)

	if _, err := Extract(initial, edges, final, 42); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing label error = %v, want %s", err, errs.ErrCodeNotFound)
	}
	if _, err := Extract(initial[:2], edges, final, 1); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("length mismatch error = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
}

func TestToDOT(t *testing.T) {
	initial, edges, final := fixture(t)
	g, err := Extract(initial, edges, final, 1)
	if err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, false)
	for _, want := range []string{
		`digraph "cluster_1" {`,
		`"10" [label="10", fillcolor=lightblue];`,
		`"11" [label="11"];`,
		`"11" -> "12";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"20"`) {
		t.Error("DOT should not contain keys from other clusters")
	}

	detailed := ToDOT(g, true)
	if !strings.Contains(detailed, `initial: 3`) {
		t.Errorf("detailed DOT should show initial labels:\n%s", detailed)
	}
}

func TestComponentLimits(t *testing.T) {
	initial, edges, final := fixture(t)
	ctx := context.Background()

	if _, err := Component(ctx, initial, edges, final, 1, Options{MaxNodes: 2}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("oversized component error = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
	if _, err := Component(ctx, initial, edges, final, 1, Options{Format: "png"}); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("png error = %v, want %s", err, errs.ErrCodeUnsupported)
	}

	out, err := Component(ctx, initial, edges, final, 9, Options{Format: FormatDOT, MaxNodes: -1})
	if err != nil {
		t.Fatalf("Component error: %v", err)
	}
	if !strings.HasPrefix(string(out), `digraph "cluster_9"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if plain := []byte("<svg></svg>"); string(normalizeViewBox(plain)) != "<svg></svg>" {
		t.Error("svg without viewBox should be unchanged")
	}
}
