package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/bookclusters/pkg/cache"
	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
	"github.com/matzehuels/bookclusters/pkg/observability"
	"github.com/matzehuels/bookclusters/pkg/table"
)

func writeInputs(t *testing.T, keys, edges string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	kp := filepath.Join(dir, "isbns.csv")
	ep := filepath.Join(dir, "edges.csv")
	if err := os.WriteFile(kp, []byte(keys), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ep, []byte(edges), 0o644); err != nil {
		t.Fatal(err)
	}
	return kp, ep
}

const (
	chainKeys  = "isbn_id,cluster\n1,10\n2,20\n3,30\n4,40\n"
	chainEdges = "left_isbn,right_isbn\n1,2\n2,3\n"
)

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"in-memory", Options{}, false},
		{"files", Options{KeysPath: "k.csv", EdgesPath: "e.csv"}, false},
		{"missing edges", Options{KeysPath: "k.csv"}, true},
		{"mixed input", Options{KeysPath: "k.csv", EdgesPath: "e.csv", Keys: []cluster.Assignment[int64]{}}, true},
		{"negative sweeps", Options{MaxSweeps: -1}, true},
		{"bad output", Options{Output: "out.parquet"}, true},
		{"bad column", Options{KeysPath: "k.csv", EdgesPath: "e.csv", Columns: table.Columns{Key: "a b", Left: "l", Right: "r"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Columns != table.DefaultColumns() || o.Logger == nil || o.Reporter == nil {
		t.Errorf("defaults not applied: %+v", o)
	}
}

func TestExecuteFromFiles(t *testing.T) {
	kp, ep := writeInputs(t, chainKeys, chainEdges)
	out := filepath.Join(filepath.Dir(kp), "clusters.json")

	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{KeysPath: kp, EdgesPath: ep, Output: out})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	want := []cluster.Assignment[int64]{{Key: 1, Label: 10}, {Key: 2, Label: 10}, {Key: 3, Label: 10}, {Key: 4, Label: 40}}
	if !reflect.DeepEqual(res.Assignments, want) {
		t.Errorf("Assignments = %v, want %v", res.Assignments, want)
	}
	if res.Summary.Clusters != 2 || res.Summary.Largest != 3 {
		t.Errorf("Summary = %+v", res.Summary)
	}
	if res.Stats.Sweeps != 2 {
		t.Errorf("Sweeps = %d, want 2", res.Stats.Sweeps)
	}
	if res.RunID == "" || res.Hash != table.Hash(want) {
		t.Errorf("RunID %q, Hash %q", res.RunID, res.Hash)
	}

	saved, err := table.LoadKeys(out, table.DefaultColumns())
	if err != nil {
		t.Fatalf("LoadKeys(output) error: %v", err)
	}
	if !reflect.DeepEqual(saved, want) {
		t.Errorf("saved = %v, want %v", saved, want)
	}
}

func TestExecuteInMemory(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Keys:      []cluster.Assignment[int64]{{Key: 1, Label: 1}, {Key: 2, Label: 2}, {Key: 3, Label: 3}},
		Edges:     []cluster.Edge[int64]{{From: 3, To: 2}, {From: 2, To: 1}},
		Symmetric: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, a := range res.Assignments {
		if a.Label != 1 {
			t.Errorf("key %d label = %d, want 1", a.Key, a.Label)
		}
	}
	if len(res.Edges) != 4 {
		t.Errorf("symmetrized edges = %d, want 4", len(res.Edges))
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	kp, ep := writeInputs(t, chainKeys, "left_isbn,right_isbn\n1,99\n")
	_, err := r.Execute(ctx, Options{KeysPath: kp, EdgesPath: ep})
	if !errors.Is(err, cluster.ErrUnknownKey) {
		t.Errorf("unknown key error = %v, want ErrUnknownKey", err)
	}
	if !errs.Is(err, errs.ErrCodeUnknownKey) {
		t.Errorf("error code = %v, want %s", errs.GetCode(err), errs.ErrCodeUnknownKey)
	}

	_, err = r.Execute(ctx, Options{KeysPath: kp, EdgesPath: filepath.Join(t.TempDir(), "nope.csv")})
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want %s", err, errs.ErrCodeFileNotFound)
	}

	kp, ep = writeInputs(t, "isbn_id,cluster\n1,1\n2,2\n3,3\n", "left_isbn,right_isbn\n2,3\n1,2\n")
	_, err = r.Execute(ctx, Options{KeysPath: kp, EdgesPath: ep, MaxSweeps: 1})
	if !errors.Is(err, cluster.ErrNotConverged) {
		t.Errorf("max sweeps error = %v, want ErrNotConverged", err)
	}
}

func TestExecuteCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	kp, ep := writeInputs(t, chainKeys, chainEdges)

	first, err := r.Execute(ctx, Options{KeysPath: kp, EdgesPath: ep})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(ctx, Options{KeysPath: kp, EdgesPath: ep})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if !reflect.DeepEqual(first.Assignments, second.Assignments) || first.Stats.Sweeps != second.Stats.Sweeps {
		t.Error("cached result differs from computed result")
	}
	if first.RunID == second.RunID {
		t.Error("each run should get its own RunID")
	}

	refreshed, err := r.Execute(ctx, Options{KeysPath: kp, EdgesPath: ep, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	sym, err := r.Execute(ctx, Options{KeysPath: kp, EdgesPath: ep, Symmetric: true})
	if err != nil {
		t.Fatal(err)
	}
	if sym.CacheHit {
		t.Error("different options should not share cache entries")
	}
}

func TestExecuteReporter(t *testing.T) {
	var sweeps []int
	rep := cluster.ReporterFunc(func(_ context.Context, s cluster.Sweep) {
		sweeps = append(sweeps, s.Changed)
	})

	kp, ep := writeInputs(t, chainKeys, "left_isbn,right_isbn\n2,3\n1,2\n")
	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{KeysPath: kp, EdgesPath: ep, Reporter: rep}); err != nil {
		t.Fatal(err)
	}
	if want := []int{2, 1, 0}; !reflect.DeepEqual(sweeps, want) {
		t.Errorf("sweep changes = %v, want %v", sweeps, want)
	}
}

type recordingHooks struct {
	observability.NoopClusterHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, kind, _ string, _ int, _ time.Duration, _ error) {
	h.record("load:" + kind)
}

func (h *recordingHooks) OnClusterStart(context.Context, int, int) { h.record("start") }

func (h *recordingHooks) OnSweep(context.Context, int, int, time.Duration) { h.record("sweep") }

func (h *recordingHooks) OnClusterComplete(context.Context, int, int, time.Duration, error) {
	h.record("complete")
}

func (h *recordingHooks) OnCacheMiss(_ context.Context, kt string) { h.record("miss:" + kt) }

func TestExecuteHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetClusterHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	kp, ep := writeInputs(t, chainKeys, chainEdges)
	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{KeysPath: kp, EdgesPath: ep}); err != nil {
		t.Fatal(err)
	}

	got := strings.Join(h.events, ",")
	if !strings.Contains(got, "load:keys") || !strings.Contains(got, "load:edges") {
		t.Errorf("missing load events: %s", got)
	}
	if !strings.HasSuffix(got, "miss:cluster,start,sweep,sweep,complete") {
		t.Errorf("events = %s", got)
	}
}

func TestValidateISBNs(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	batch := []string{"0306406152", "0306406153", "9780306406157", "bogus"}

	for range 2 {
		got, err := r.ValidateISBNs(context.Background(), batch)
		if err != nil {
			t.Fatal(err)
		}
		if want := []bool{true, false, true, false}; !reflect.DeepEqual(got, want) {
			t.Errorf("ValidateISBNs() = %v, want %v", got, want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	res := &Result{
		Assignments: []cluster.Assignment[int64]{{Key: 1, Label: 1}, {Key: 2, Label: 1}, {Key: 3, Label: 3}},
		Edges:       []cluster.Edge[int64]{{From: 1, To: 2}},
		Stats:       cluster.Stats{Sweeps: 2},
		Summary:     cluster.Summary[int64]{Clusters: 2},
		Hash:        "abc",
	}
	var buf bytes.Buffer
	if err := res.WriteReport(&buf); err != nil {
		t.Fatal(err)
	}
	want := "NODES 3\nEDGES 1\nCOMPONENTS 2\nSWEEPS 2\nWRITE CLUSTERS abc\n"
	if buf.String() != want {
		t.Errorf("WriteReport() = %q, want %q", buf.String(), want)
	}
}
