// Package pkg provides the core libraries for flowmodel.
//
// # Overview
//
// Flowmodel keeps a flowchart diagram in memory: nodes and edges with
// coordinates, labels, selection and stacking state. Every change goes
// through the graph's mutation API, which keeps derived state consistent
// (edges follow their nodes, one element is in text-edit mode at a time,
// promoted elements return to their z-index) and publishes an event per
// change. The pkg directory is organized into these areas:
//
//  1. [model], [event], [geometry] - the graph model, its event stream and
//     the plane geometry it relies on
//  2. [io], [script], [config] - documents, mutation scripts and settings
//  3. [render], [pipeline] - Graphviz output and the load → script → render
//     flow with artifact caching
//  4. [cache], [store] - render artifact caches and named snapshot storage
//  5. [api], [observability] - the HTTP surface and instrumentation hooks
//
// # Architecture
//
// The typical data flow:
//
//	JSON document / stored snapshot
//	         ↓
//	    [model] Graph.Load (AddNode / AddEdge)
//	         ↓
//	    [script] or [api] mutations ──→ [event] stream
//	         ↓
//	    [render/nodelink] DOT with pinned positions
//	         ↓
//	    DOT/SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/flowmodel/pkg/event"
//	    "github.com/matzehuels/flowmodel/pkg/model"
//	)
//
//	g := model.New(model.Options{GridSize: 10})
//	g.On(event.NodeMove, func(ev event.Event) { fmt.Println(ev.Type) })
//
//	a, _ := g.AddNode(model.NodeConfig{Type: "rect", X: 100, Y: 100})
//	b, _ := g.AddNode(model.NodeConfig{Type: "circle", X: 300, Y: 100})
//	g.AddEdge(model.EdgeConfig{SourceNodeID: a.ID, TargetNodeID: b.ID})
//
//	g.MoveNode(b.ID, 0, 40, false) // the edge's end point follows
//	g.ToFront(a.ID)
package pkg
