package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New()
	if err := h.Register(reg); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := h.Register(reg); err == nil {
		t.Error("registering twice should fail")
	}
}

func TestClusterMetrics(t *testing.T) {
	ctx := context.Background()
	h := New()

	h.OnClusterStart(ctx, 10, 20)
	if got := testutil.ToFloat64(h.activeRuns); got != 1 {
		t.Errorf("active runs = %v, want 1", got)
	}
	h.OnSweep(ctx, 1, 7, time.Millisecond)
	h.OnSweep(ctx, 2, 0, time.Millisecond)
	h.OnClusterComplete(ctx, 2, 7, 5*time.Millisecond, nil)

	if got := testutil.ToFloat64(h.activeRuns); got != 0 {
		t.Errorf("active runs = %v, want 0", got)
	}
	if got := testutil.ToFloat64(h.labelChanges); got != 7 {
		t.Errorf("label changes = %v, want 7", got)
	}
	if got := testutil.ToFloat64(h.runs.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}

	h.OnClusterStart(ctx, 1, 1)
	h.OnClusterComplete(ctx, 0, 0, 0, errors.New("unknown key"))
	if got := testutil.ToFloat64(h.runs.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
}

func TestLoadAndCacheMetrics(t *testing.T) {
	ctx := context.Background()
	h := New()

	h.OnLoadStart(ctx, "edges", "edges.csv")
	h.OnLoadComplete(ctx, "edges", "edges.csv", 42, time.Millisecond, nil)
	h.OnLoadComplete(ctx, "keys", "isbns.csv", 99, time.Millisecond, errors.New("bad row"))
	if got := testutil.ToFloat64(h.loadRows.WithLabelValues("edges")); got != 42 {
		t.Errorf("edge rows = %v, want 42", got)
	}
	if got := testutil.ToFloat64(h.loadRows.WithLabelValues("keys")); got != 0 {
		t.Errorf("failed loads should not count rows, got %v", got)
	}

	h.OnCacheMiss(ctx, "cluster")
	h.OnCacheSet(ctx, "cluster", 128)
	h.OnCacheHit(ctx, "cluster")
	h.OnCacheHit(ctx, "cluster")
	if got := testutil.ToFloat64(h.cacheOps.WithLabelValues("cluster", "hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.cacheBytes); got != 128 {
		t.Errorf("bytes = %v, want 128", got)
	}
}

func TestHTTPMetrics(t *testing.T) {
	h := New()
	h.OnRequest(context.Background(), "POST", "/v1/clusters", 422, time.Millisecond)
	if got := testutil.ToFloat64(h.requests.WithLabelValues("POST", "/v1/clusters", "422")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}
