package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[cluster]
max_sweeps = 50
symmetric = true

[columns]
key = "isbn"
label = "cluster_id"
left = "a"
right = "b"

[cache]
backend = "redis"
ttl = "2h"
redis_addr = "localhost:6379"

[server]
addr = "127.0.0.1:9000"
read_timeout = "10s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cluster.MaxSweeps != 50 || !cfg.Cluster.Symmetric {
		t.Errorf("Cluster = %+v", cfg.Cluster)
	}
	if cfg.Columns.Key != "isbn" || cfg.Columns.Right != "b" {
		t.Errorf("Columns = %+v", cfg.Columns)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	// untouched sections keep defaults
	if cfg.Store.Collection != "isbn_cluster" || cfg.Server.MaxBodyBytes != 64<<20 {
		t.Errorf("defaults lost: %+v %+v", cfg.Store, cfg.Server)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without a file should succeed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("explicit missing path error = %v, want %s", err, errs.ErrCodeFileNotFound)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "bookclusters"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bookclusters", "config.toml"), []byte("[cluster]\nmax_sweeps = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cluster.MaxSweeps != 7 {
		t.Errorf("MaxSweeps = %d, want 7", cfg.Cluster.MaxSweeps)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[cluster\n", "parse"},
		{"unknown key", "[cluster]\nmax_sweep = 3\n", "cluster.max_sweep"},
		{"negative sweeps", "[cluster]\nmax_sweeps = -1\n", "max_sweeps"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "cache.backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", "redis_addr"},
		{"bad mongo uri", "[store]\nmongo_uri = \"http://db\"\n", "schemes"},
		{"same edge columns", "[columns]\nleft = \"x\"\nright = \"x\"\n", "edge columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "bookclusters") {
		t.Errorf("CacheDir() = %s", dir)
	}
}
