// Package config loads the bookclusters configuration file.
//
// The file is TOML and every key is optional:
//
//	[cluster]
//	max_sweeps = 0        # 0 runs to the fixpoint
//	symmetric = false     # add reversed edges before propagating
//
//	[columns]
//	key = "isbn_id"
//	label = "cluster"
//	left = "left_isbn"
//	right = "right_isbn"
//
//	[cache]
//	backend = "file"      # file, redis or none
//	ttl = "168h"
//	redis_addr = "localhost:6379"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//	database = "bookclusters"
//	collection = "isbn_cluster"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override file values, which override defaults.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bookclusters/pkg/cache"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
	"github.com/matzehuels/bookclusters/pkg/store/mongo"
	"github.com/matzehuels/bookclusters/pkg/table"
)

const appName = "bookclusters"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration.
type Config struct {
	Cluster ClusterConfig `toml:"cluster"`
	Columns table.Columns `toml:"columns"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
}

// ClusterConfig holds propagation defaults.
type ClusterConfig struct {
	MaxSweeps int  `toml:"max_sweeps"`
	Symmetric bool `toml:"symmetric"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"` // file backend; empty means the XDG cache dir
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix"`
}

// StoreConfig configures the MongoDB export.
type StoreConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	BatchSize  int    `toml:"batch_size"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Columns: table.DefaultColumns(),
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     cache.TTLCluster,
			Prefix:  appName + ":",
		},
		Store: StoreConfig{
			Database:   mongo.DefaultDatabase,
			Collection: mongo.DefaultCollection,
			BatchSize:  mongo.DefaultBatchSize,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			MaxBodyBytes: 64 << 20,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/bookclusters/config.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the file cache directory using the XDG standard
// (~/.cache/bookclusters/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errs.New(errs.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	if c.Cluster.MaxSweeps < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cluster.max_sweeps must not be negative")
	}
	if err := c.Columns.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Store.MongoURI != "" {
		if err := errs.ValidateURL(c.Store.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
	}
	return nil
}

// MongoOptions converts the store section for mongo.Open.
func (s StoreConfig) MongoOptions() mongo.Options {
	return mongo.Options{
		URI:        s.MongoURI,
		Database:   s.Database,
		Collection: s.Collection,
		BatchSize:  s.BatchSize,
	}
}
