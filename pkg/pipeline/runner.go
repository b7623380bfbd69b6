package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowmodel/pkg/cache"
	"github.com/matzehuels/flowmodel/pkg/io"
	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/observability"
	"github.com/matzehuels/flowmodel/pkg/render/nodelink"
	"github.com/matzehuels/flowmodel/pkg/script"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner as long as each works on its own graph.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → script → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	g, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)

	// Stage 2: Script
	if opts.Script != nil {
		scriptStart := time.Now()
		n, err := r.ApplyScript(ctx, g, opts.Script)
		result.Stats.ScriptOps = n
		if err != nil {
			return nil, fmt.Errorf("script: %w", err)
		}
		result.Stats.ScriptTime = time.Since(scriptStart)
	}

	data := g.GraphData()
	result.Stats.NodeCount = len(data.Nodes)
	result.Stats.EdgeCount = len(data.Edges)
	var buf bytes.Buffer
	if err := io.WriteData(data, &buf); err == nil {
		result.SnapshotHash = cache.Hash(buf.Bytes())
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load builds a graph from opts.Document. On failure the graph is discarded
// and the error carries the failing element's code.
func (r *Runner) Load(ctx context.Context, opts Options) (*model.Graph, error) {
	r.applyLogger(&opts)
	source := opts.describe()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	gopts := opts.Graph
	if gopts.Logger == nil {
		gopts.Logger = opts.Logger
	}
	g := model.New(gopts)
	err := g.Load(opts.Document)

	nodes, edges := len(g.Nodes()), len(g.Edges())
	hooks.OnLoadComplete(ctx, source, nodes, edges, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("loaded graph",
		"source", source,
		"nodes", nodes,
		"edges", edges,
		"duration", time.Since(start))
	return g, nil
}

// ApplyScript replays s on g and returns the number of operations applied.
// Operations before a failing one stay applied.
func (r *Runner) ApplyScript(ctx context.Context, g *model.Graph, s *script.Script) (int, error) {
	hooks := observability.Pipeline()
	hooks.OnScriptStart(ctx, len(s.Ops))
	start := time.Now()

	n, err := s.Apply(g)

	hooks.OnScriptComplete(ctx, n, time.Since(start), err)
	if err != nil {
		return n, err
	}
	r.Logger.Info("applied script",
		"ops", n,
		"duration", time.Since(start))
	return n, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every cacheable artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *model.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, g, opts)

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, g *model.Graph, opts Options) (map[string][]byte, bool, error) {
	dot := nodelink.ToDOT(g, opts.NodelinkOptions())
	dotHash := cache.Hash([]byte(dot))
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var pending []string
	cacheable := 0

	for _, format := range opts.Formats {
		if !cachedFormats[format] || opts.Refresh {
			pending = append(pending, format)
			continue
		}
		cacheable++
		key := r.Keyer.ArtifactKey(dotHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		} else if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
		pending = append(pending, format)
	}

	allCached := cacheable > 0
	for _, format := range pending {
		if cachedFormats[format] {
			allCached = false
		}
	}

	if len(pending) == 0 {
		return artifacts, allCached, nil
	}

	rendered, err := RenderDOT(ctx, dot, g, pending, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		if !cachedFormats[format] {
			continue
		}
		key := r.Keyer.ArtifactKey(dotHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}

	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *model.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
