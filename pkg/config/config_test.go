package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/model"
)

func TestParse(t *testing.T) {
	src := `
[graph]
grid_size = 20
edge_type = "line"
overlap_mode = "increase"
id_prefix = "flow"

[theme.rect]
fill = "#EEF2FF"

[log]
level = "debug"

[cache]
backend = "none"
ttl = "1h"
key_prefix = "flow:"
`
	cfg, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Graph.GridSize != 20 || cfg.Graph.EdgeType != "line" {
		t.Errorf("graph = %+v", cfg.Graph)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
	if ttl, _ := cfg.CacheTTL(); ttl != time.Hour {
		t.Errorf("CacheTTL() = %v, want 1h", ttl)
	}
	if cfg.Cache.KeyPrefix != "flow:" {
		t.Errorf("Cache.KeyPrefix = %q, want flow:", cfg.Cache.KeyPrefix)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("unset section lost its default: %q", cfg.Server.Addr)
	}

	opts := cfg.ModelOptions(nil)
	if opts.OverlapMode != model.OverlapModeIncrease {
		t.Errorf("OverlapMode = %v, want increase", opts.OverlapMode)
	}
	g := model.New(opts)
	n, err := g.AddNode(model.NodeConfig{Type: "rect", X: 33})
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != "flow-rect-1" || n.X != 40 {
		t.Errorf("node id = %q, x = %v", n.ID, n.X)
	}
	if n.NodeStyle()["fill"] != "#EEF2FF" {
		t.Errorf("theme override not applied: %v", n.NodeStyle())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "[graph\n"},
		{"unknown key", "[graph]\ngrid = 10\n"},
		{"bad overlap mode", "[graph]\noverlap_mode = \"stack\"\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n"},
		{"negative grid", "[graph]\ngrid_size = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvRedisURL, "")
			t.Setenv(EnvMongoURI, "")
			_, err := Parse(strings.NewReader(tt.src))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://cache:6379/1")
	cfg, err := Parse(strings.NewReader("[cache]\nbackend = \"redis\"\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Cache.RedisURL != "redis://cache:6379/1" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Default()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	cfg, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse(Write(Default())) error: %v\n%s", err, buf.String())
	}
	if cfg.Store.Collection != "snapshots" {
		t.Errorf("Collection = %q", cfg.Store.Collection)
	}
}
