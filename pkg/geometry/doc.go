// Package geometry provides the pure coordinate helpers used by the graph model.
//
// Everything in this package operates on canvas-space float64 coordinates and
// has no knowledge of nodes or edges. The model layer composes these helpers
// to keep derived state (edge endpoints, label positions) consistent.
//
// # Grid Snapping
//
// [SnapToGrid] rounds a coordinate to the nearest multiple of the grid size.
// A grid size of 1 (or anything <= 1) means "no snapping" and returns the
// value unchanged, so snapping is always idempotent:
//
//	geometry.SnapToGrid(geometry.SnapToGrid(v, g), g) == geometry.SnapToGrid(v, g)
//
// # Hit Testing
//
// [IsPointInArea] is a strict (exclusive) rectangle containment test, used for
// marquee selection of elements.
//
// # Polylines
//
// [ClosestPointOnPolyline] finds the point on a multi-segment line that is
// nearest to a reference point. The model uses it to keep polyline labels on
// the line after an endpoint moves.
package geometry
