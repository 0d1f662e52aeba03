// Package prom implements the observability hooks on Prometheus collectors.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/bookclusters/pkg/observability"
)

const namespace = "bookclusters"

// Hooks records cluster, cache and HTTP events as Prometheus metrics.
// It implements observability.ClusterHooks, CacheHooks and HTTPHooks.
type Hooks struct {
	loadDuration    *prometheus.HistogramVec
	loadRows        *prometheus.CounterVec
	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
	sweeps          prometheus.Histogram
	labelChanges    prometheus.Counter
	sweepDuration   prometheus.Histogram
	activeRuns      prometheus.Gauge
	cacheOps        *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates unregistered collectors.
func New() *Hooks {
	return &Hooks{
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent reading an input table.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "status"}),
		loadRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_rows_total",
			Help:      "Rows read from input tables.",
		}, []string{"kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_runs_total",
			Help:      "Propagation runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_duration_seconds",
			Help:      "Propagation wall time.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		sweeps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_sweeps",
			Help:      "Sweeps needed to reach the fixpoint.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		labelChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "label_changes_total",
			Help:      "Labels lowered across all sweeps.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent in a single sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cluster_runs_active",
			Help:      "Propagation runs in progress.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Collectors returns every collector owned by h.
func (h *Hooks) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		h.loadDuration, h.loadRows,
		h.runs, h.runDuration, h.sweeps, h.labelChanges, h.sweepDuration, h.activeRuns,
		h.cacheOps, h.cacheBytes,
		h.requests, h.requestDuration,
	}
}

// Register registers all collectors with reg.
func (h *Hooks) Register(reg prometheus.Registerer) error {
	for _, c := range h.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (h *Hooks) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(h.Collectors()...)
}

// Install registers h with reg and makes it the global hook set.
func Install(reg prometheus.Registerer) (*Hooks, error) {
	h := New()
	if err := h.Register(reg); err != nil {
		return nil, err
	}
	observability.SetClusterHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	return h, nil
}

// =============================================================================
// Cluster Hooks
// =============================================================================

func (h *Hooks) OnLoadStart(context.Context, string, string) {}

func (h *Hooks) OnLoadComplete(_ context.Context, kind, _ string, rows int, d time.Duration, err error) {
	h.loadDuration.WithLabelValues(kind, status(err)).Observe(d.Seconds())
	if err == nil {
		h.loadRows.WithLabelValues(kind).Add(float64(rows))
	}
}

func (h *Hooks) OnClusterStart(context.Context, int, int) {
	h.activeRuns.Inc()
}

func (h *Hooks) OnClusterComplete(_ context.Context, sweeps, _ int, d time.Duration, err error) {
	h.activeRuns.Dec()
	h.runs.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	h.runDuration.Observe(d.Seconds())
	h.sweeps.Observe(float64(sweeps))
}

func (h *Hooks) OnSweep(_ context.Context, _, changed int, d time.Duration) {
	h.labelChanges.Add(float64(changed))
	h.sweepDuration.Observe(d.Seconds())
}

// =============================================================================
// Cache Hooks
// =============================================================================

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

// =============================================================================
// HTTP Hooks
// =============================================================================

func (h *Hooks) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.ClusterHooks = (*Hooks)(nil)
	_ observability.CacheHooks   = (*Hooks)(nil)
	_ observability.HTTPHooks    = (*Hooks)(nil)
)
