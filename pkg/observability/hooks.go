// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline execution, cache operations, API requests
// and graph mutations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so library packages never
// import a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetGraphHooks(&myGraphHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLoadStart(ctx, path)
//	// ... load snapshot ...
//	observability.Pipeline().OnLoadComplete(ctx, path, nodes, edges, duration, err)
//
// Graph events reach [GraphHooks] through [Observe], which subscribes to a
// graph's emitter:
//
//	off := observability.Observe(g.Emitter())
//	defer off()
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/flowmodel/pkg/event"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load → script → render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, nodeCount, edgeCount int, duration time.Duration, err error)

	// Script events
	OnScriptStart(ctx context.Context, ops int)
	OnScriptComplete(ctx context.Context, applied int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
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

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request. route is the matched pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response status and handling time.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an error.
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// Graph Hooks
// =============================================================================

// GraphHooks receives every event a graph emits.
type GraphHooks interface {
	OnGraphEvent(t event.Type)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnScriptStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnScriptComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// NoopGraphHooks is a no-op implementation of GraphHooks.
type NoopGraphHooks struct{}

func (NoopGraphHooks) OnGraphEvent(event.Type) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	graphHooks    GraphHooks    = NoopGraphHooks{}
)

// register replaces *slot with h under the registry lock. A nil h is ignored.
func register[T any](slot *T, h T) {
	if any(h) == nil {
		return
	}
	hooksMu.Lock()
	*slot = h
	hooksMu.Unlock()
}

func current[T any](slot *T) T {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return *slot
}

// SetPipelineHooks registers pipeline hooks. Call it from main before the
// first runner is created.
func SetPipelineHooks(h PipelineHooks) { register(&pipelineHooks, h) }

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) { register(&cacheHooks, h) }

// SetHTTPHooks registers HTTP hooks. Call it before the API server starts.
func SetHTTPHooks(h HTTPHooks) { register(&httpHooks, h) }

// SetGraphHooks registers the hooks [Observe] forwards graph events to.
func SetGraphHooks(h GraphHooks) { register(&graphHooks, h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current(&pipelineHooks) }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current(&cacheHooks) }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current(&httpHooks) }

// Graph returns the registered graph hooks.
func Graph() GraphHooks { return current(&graphHooks) }

// Observe forwards every event published on e to the registered graph hooks.
// The hooks are looked up per event, so hooks set after Observe still apply.
func Observe(e *event.Emitter) (off func()) {
	return e.On(event.Any, func(ev event.Event) {
		Graph().OnGraphEvent(ev.Type)
	})
}

// Reset restores the no-op hooks. Tests use it to undo registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
	graphHooks = NoopGraphHooks{}
}
