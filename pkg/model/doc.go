// Package model implements the in-memory flowchart graph: element records,
// the type registry, and the Graph that keeps derived state consistent.
//
// # Architecture
//
//   - [Element]: fields and mutators shared by nodes and edges
//   - [Node], [Edge]: concrete element records with geometry
//   - [NodeBehavior], [EdgeBehavior]: per-type capability bundles (anchors,
//     styles, size, attribute derivation) selected through the [Registry]
//   - [Graph]: owns the node and edge collections, selection and stacking
//     policy, and publishes every structural change on its event emitter
//
// Elements are only created through [Graph.AddNode] and [Graph.AddEdge]; the
// graph resolves the behavior registered for the requested type and fails
// with an UNKNOWN_TYPE error when there is none.
//
// # Edge-Follows-Node
//
// Moving a node translates the matching endpoint of every incident edge and
// repositions edge labels:
//
//	g.MoveNode("a", 20, 0, false)    // node, its label, and incident edges follow
//	g.MoveNodes([]string{"a", "b"}, 5, 5, false)
//
// The batch form visits each edge once, so an edge between two moved nodes
// has its label translated a single time.
//
// # Stacking
//
// Under [OverlapModeDefault], [Graph.ToFront] temporarily promotes one element
// to [MaxZIndex] and [Graph.ClearSelectElements] undoes it. Under
// [OverlapModeIncrease] the element is permanently raised above the current
// maximum and z-indexes become part of the snapshot.
//
// # Concurrency
//
// A Graph has a single logical owner. Every operation runs to completion and
// publishes its events synchronously before returning. Callers that share a
// Graph across goroutines must serialize access themselves.
package model
