package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Cluster hooks
	p := NoopClusterHooks{}
	p.OnLoadStart(ctx, "keys", "isbns.csv")
	p.OnLoadComplete(ctx, "keys", "isbns.csv", 100, time.Second, nil)
	p.OnClusterStart(ctx, 100, 250)
	p.OnSweep(ctx, 1, 40, time.Millisecond)
	p.OnClusterComplete(ctx, 3, 40, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "cluster")
	c.OnCacheMiss(ctx, "cluster")
	c.OnCacheSet(ctx, "cluster", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/clusters", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Cluster().(NoopClusterHooks); !ok {
		t.Error("Cluster() should return NoopClusterHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customCluster := &testClusterHooks{}
	SetClusterHooks(customCluster)
	if Cluster() != customCluster {
		t.Error("SetClusterHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Cluster().(NoopClusterHooks); !ok {
		t.Error("Reset() should restore NoopClusterHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testClusterHooks{}
	SetClusterHooks(custom)

	// Setting nil should be ignored
	SetClusterHooks(nil)

	if Cluster() != custom {
		t.Error("SetClusterHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testClusterHooks struct{ NoopClusterHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
