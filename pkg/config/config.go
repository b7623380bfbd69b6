// Package config loads flowmodel's TOML configuration file.
//
// A configuration file covers the graph defaults handed to [model.Options],
// theme overrides, and the backends used by the CLI and HTTP server:
//
//	[graph]
//	grid_size = 10
//	edge_type = "polyline"
//	overlap_mode = "increase"
//	id_prefix = "flow"
//
//	[theme.rect]
//	fill = "#EEF2FF"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	key_prefix = "flow:orders:"
//
// Unknown keys are rejected so typos surface early. Environment variables
// FLOWMODEL_REDIS_URL and FLOWMODEL_MONGO_URI override the matching keys.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/model"
)

// Environment overrides.
const (
	EnvRedisURL = "FLOWMODEL_REDIS_URL"
	EnvMongoURI = "FLOWMODEL_MONGO_URI"
)

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the root of the configuration file.
type Config struct {
	Graph  Graph       `toml:"graph"`
	Theme  model.Theme `toml:"theme"`
	Log    Log         `toml:"log"`
	Cache  Cache       `toml:"cache"`
	Store  Store       `toml:"store"`
	Server Server      `toml:"server"`
}

// Graph holds the defaults for new graphs.
type Graph struct {
	GridSize    float64 `toml:"grid_size"`
	EdgeType    string  `toml:"edge_type"`
	OverlapMode string  `toml:"overlap_mode"`
	IDPrefix    string  `toml:"id_prefix"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Cache selects the render artifact cache.
type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	TTL      string `toml:"ttl"`

	// KeyPrefix scopes artifact keys when several instances share a backend.
	KeyPrefix string `toml:"key_prefix"`
}

// Store selects where named snapshots are kept.
type Store struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Graph:  Graph{EdgeType: model.DefaultEdgeType, OverlapMode: model.OverlapModeDefault.String()},
		Log:    Log{Level: "info"},
		Cache:  Cache{Backend: BackendFile, TTL: "24h"},
		Store:  Store{Backend: BackendFile, Database: "flowmodel", Collection: "snapshots"},
		Server: Server{Addr: "127.0.0.1:8080"},
	}
}

// Load reads the file at path on top of [Default] and applies environment
// overrides. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes TOML from r on top of [Default].
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
}

// Validate checks enumerations and cross-field requirements.
func (c Config) Validate() error {
	if c.Graph.GridSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "graph.grid_size must be >= 0")
	}
	if _, err := model.ParseOverlapMode(c.Graph.OverlapMode); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "graph.overlap_mode")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

// CacheTTL parses cache.ttl. Empty means no expiry.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.ttl")
	}
	return d, nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// ModelOptions translates the graph section into [model.Options].
func (c Config) ModelOptions(logger *log.Logger) model.Options {
	mode, _ := model.ParseOverlapMode(c.Graph.OverlapMode)
	theme := c.Theme
	opts := model.Options{
		GridSize:    c.Graph.GridSize,
		EdgeType:    c.Graph.EdgeType,
		OverlapMode: mode,
		Theme:       &theme,
		Logger:      logger,
	}
	if c.Graph.IDPrefix != "" {
		opts.IDGenerator = PrefixIDs(c.Graph.IDPrefix)
	}
	return opts
}

// PrefixIDs returns an id generator producing "<prefix>-<type>-<n>".
func PrefixIDs(prefix string) func(string) string {
	var n atomic.Int64
	return func(typ string) string {
		return fmt.Sprintf("%s-%s-%d", prefix, typ, n.Add(1))
	}
}
