package model

import (
	"github.com/matzehuels/flowmodel/pkg/event"
	"github.com/matzehuels/flowmodel/pkg/geometry"
)

// MoveNode displaces a node by (dx, dy) through its move rules and drags the
// incident edges along. Publishes [event.NodeMove] when the node moved.
func (g *Graph) MoveNode(nodeID string, dx, dy float64, ignoreRules bool) {
	n := g.NodeByID(nodeID)
	if n == nil {
		g.logger.Warn("move: node not found", "id", nodeID)
		return
	}
	dx, dy = n.MoveDistance(dx, dy, ignoreRules)
	g.MoveEdge(nodeID, dx, dy)
	if dx != 0 || dy != 0 {
		g.emit(event.NodeMove, n.Data())
	}
}

// MoveNode2Coordinate moves a node so its center lands on (x, y).
func (g *Graph) MoveNode2Coordinate(nodeID string, x, y float64, ignoreRules bool) {
	n := g.NodeByID(nodeID)
	if n == nil {
		g.logger.Warn("move: node not found", "id", nodeID)
		return
	}
	g.MoveNode(nodeID, x-n.X, y-n.Y, ignoreRules)
}

// MoveEdge drags every edge incident to nodeID by (dx, dy): starts for
// outgoing edges, ends for incoming ones, both for self-loops. Labels follow:
// pinned labels are re-centered, polyline labels snap to the nearest point on
// the new route, others translate with the endpoint.
func (g *Graph) MoveEdge(nodeID string, dx, dy float64) {
	if g.NodeByID(nodeID) == nil {
		g.logger.Warn("move edge: node not found", "id", nodeID)
		return
	}
	for _, e := range g.edges {
		asSource := e.SourceNodeID == nodeID
		asTarget := e.TargetNodeID == nodeID
		if !asSource && !asTarget {
			continue
		}
		old := geometry.Point{X: e.Text.X, Y: e.Text.Y}
		if asSource {
			e.MoveStartPoint(dx, dy)
		}
		if asTarget {
			e.MoveEndPoint(dx, dy)
		}
		switch {
		case e.CustomTextPosition:
			e.ResetTextPosition()
		case e.isPolyline() && e.Text.Value != "":
			p := geometry.ClosestPointOnPolyline(old, e.Points())
			e.moveText(p.X-old.X, p.Y-old.Y)
		default:
			e.moveText(dx, dy)
		}
		g.emit(event.EdgeAdjust, e.Data())
	}
}

// MoveNodes displaces several nodes at once. Each node resolves its own
// allowed displacement; every edge is then visited once, with each endpoint
// following its node and the label translated a single time by the last
// applied endpoint delta. Unknown ids are skipped with a warning.
// Publishes one [event.NodesMove] carrying the moved nodes' snapshots.
func (g *Graph) MoveNodes(nodeIDs []string, dx, dy float64, ignoreRules bool) {
	type delta struct{ dx, dy float64 }
	moved := make(map[string]delta, len(nodeIDs))
	var snapshots []NodeData
	for _, id := range nodeIDs {
		if _, seen := moved[id]; seen {
			continue
		}
		n := g.NodeByID(id)
		if n == nil {
			g.logger.Warn("move: node not found", "id", id)
			continue
		}
		ndx, ndy := n.MoveDistance(dx, dy, ignoreRules)
		moved[id] = delta{ndx, ndy}
		snapshots = append(snapshots, n.Data())
	}
	for _, e := range g.edges {
		src, okSource := moved[e.SourceNodeID]
		tgt, okTarget := moved[e.TargetNodeID]
		if !okSource && !okTarget {
			continue
		}
		var text delta
		if okSource {
			e.MoveStartPoint(src.dx, src.dy)
			text = src
		}
		if okTarget {
			e.MoveEndPoint(tgt.dx, tgt.dy)
			text = tgt
		}
		e.moveText(text.dx, text.dy)
		g.emit(event.EdgeAdjust, e.Data())
	}
	if len(snapshots) > 0 {
		g.emit(event.NodesMove, snapshots)
	}
}
