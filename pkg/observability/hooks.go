// Package observability provides hooks for metrics and tracing.
//
// Instrumentation is optional: libraries emit events through the hook
// registry and the binary decides at startup which backend, if any, receives
// them. The default hooks do nothing.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := prom.New()
//	    h.MustRegister(prometheus.DefaultRegisterer)
//	    observability.SetClusterHooks(h)
//	    observability.SetCacheHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Cluster().OnClusterStart(ctx, len(keys), len(edges))
//	// ... propagate ...
//	observability.Cluster().OnClusterComplete(ctx, stats.Sweeps, stats.Changed, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Cluster Hooks
// =============================================================================

// ClusterHooks receives events from the cluster pipeline.
type ClusterHooks interface {
	// Load events, one pair per input table. kind is "keys" or "edges".
	OnLoadStart(ctx context.Context, kind, path string)
	OnLoadComplete(ctx context.Context, kind, path string, rows int, duration time.Duration, err error)

	// Propagation events
	OnClusterStart(ctx context.Context, keys, edges int)
	OnClusterComplete(ctx context.Context, sweeps, changed int, duration time.Duration, err error)

	// OnSweep is called after every sweep of a propagation run.
	OnSweep(ctx context.Context, index, changed int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records a served request. route is the matched route
	// pattern, not the raw path.
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopClusterHooks is a no-op implementation of ClusterHooks.
type NoopClusterHooks struct{}

func (NoopClusterHooks) OnLoadStart(context.Context, string, string) {}
func (NoopClusterHooks) OnLoadComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopClusterHooks) OnClusterStart(context.Context, int, int)                          {}
func (NoopClusterHooks) OnClusterComplete(context.Context, int, int, time.Duration, error) {}
func (NoopClusterHooks) OnSweep(context.Context, int, int, time.Duration)                  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	clusterHooks ClusterHooks = NoopClusterHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetClusterHooks registers custom cluster hooks.
// This should be called once at application startup before any runs.
func SetClusterHooks(h ClusterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		clusterHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Cluster returns the registered cluster hooks.
func Cluster() ClusterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return clusterHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	clusterHooks = NoopClusterHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
