package model

import (
	"math"
	"slices"

	"github.com/matzehuels/flowmodel/pkg/geometry"
)

// Edge is a directed connection between two nodes.
//
// Polyline edges carry their full route in PointsList; the first and last
// points always equal StartPoint and EndPoint. Straight edges leave
// PointsList empty.
type Edge struct {
	Element

	SourceNodeID       string
	TargetNodeID       string
	SourceAnchorID     string
	TargetAnchorID     string
	StartPoint         geometry.Point
	EndPoint           geometry.Point
	PointsList         []geometry.Point
	CustomTextPosition bool

	behavior EdgeBehavior
}

func (e *Edge) snapshot() any { return e.Data() }

func (e *Edge) deriveAttributes() { e.behavior.SetAttributes(e) }

// Behavior returns the edge's type behavior.
func (e *Edge) Behavior() EdgeBehavior { return e.behavior }

// ModelType returns the behavior's model type.
func (e *Edge) ModelType() ModelType { return e.behavior.ModelType() }

func (e *Edge) isPolyline() bool { return e.ModelType() == ModelPolylineEdge }

// Points returns the edge's route from start to end.
func (e *Edge) Points() []geometry.Point {
	if e.isPolyline() && len(e.PointsList) >= 2 {
		return slices.Clone(e.PointsList)
	}
	return []geometry.Point{e.StartPoint, e.EndPoint}
}

// TextPosition returns the automatic label position: the midpoint of a
// straight edge, or the midpoint of a polyline's longest segment.
func (e *Edge) TextPosition() geometry.Point {
	if e.isPolyline() {
		return geometry.LongestSegmentMidpoint(e.Points())
	}
	return geometry.Midpoint(e.StartPoint, e.EndPoint)
}

// ResetTextPosition places the label at [Edge.TextPosition].
func (e *Edge) ResetTextPosition() {
	p := e.TextPosition()
	e.Text.X, e.Text.Y = p.X, p.Y
}

// SetTextPosition pins the label at an explicit position. Subsequent endpoint
// moves re-center a pinned label.
func (e *Edge) SetTextPosition(x, y float64) {
	e.Text.X, e.Text.Y = x, y
	e.CustomTextPosition = true
}

// MoveStartPoint translates the start point. Polyline routes adjust their
// second point so the first segment stays axis-aligned.
func (e *Edge) MoveStartPoint(dx, dy float64) {
	old := e.StartPoint
	e.StartPoint = old.Add(dx, dy)
	if !e.isPolyline() || len(e.PointsList) < 2 {
		return
	}
	e.PointsList[0] = e.StartPoint
	if len(e.PointsList) > 2 {
		e.PointsList[1] = followOrthogonal(e.PointsList[1], old, dx, dy)
	}
}

// MoveEndPoint translates the end point. Polyline routes adjust their
// penultimate point so the last segment stays axis-aligned.
func (e *Edge) MoveEndPoint(dx, dy float64) {
	old := e.EndPoint
	e.EndPoint = old.Add(dx, dy)
	if !e.isPolyline() || len(e.PointsList) < 2 {
		return
	}
	last := len(e.PointsList) - 1
	e.PointsList[last] = e.EndPoint
	if len(e.PointsList) > 2 {
		e.PointsList[last-1] = followOrthogonal(e.PointsList[last-1], old, dx, dy)
	}
}

// followOrthogonal shifts neighbor along with a moved endpoint so that the
// segment between them keeps its orientation.
func followOrthogonal(neighbor, oldEnd geometry.Point, dx, dy float64) geometry.Point {
	vertical := neighbor.X == oldEnd.X
	horizontal := neighbor.Y == oldEnd.Y
	switch {
	case vertical && horizontal:
		return neighbor.Add(dx, dy)
	case vertical:
		return neighbor.Add(dx, 0)
	case horizontal:
		return neighbor.Add(0, dy)
	}
	return neighbor
}

// Translate moves the whole edge, route and label included.
func (e *Edge) Translate(dx, dy float64) {
	e.StartPoint = e.StartPoint.Add(dx, dy)
	e.EndPoint = e.EndPoint.Add(dx, dy)
	for i := range e.PointsList {
		e.PointsList[i] = e.PointsList[i].Add(dx, dy)
	}
	e.moveText(dx, dy)
}

// Bounds returns the bounding box of the edge's route.
func (e *Edge) Bounds() geometry.Bounds {
	return geometry.PolylineBounds(e.Points())
}

// EdgeStyle returns the resolved edge style.
func (e *Edge) EdgeStyle() Style { return e.behavior.EdgeStyle(e) }

// TextStyle returns the resolved label style.
func (e *Edge) TextStyle() Style { return e.behavior.TextStyle(e) }

// Data returns the edge's serializable snapshot.
func (e *Edge) Data() EdgeData {
	d := EdgeData{
		ID:             e.ID,
		Type:           e.Type,
		SourceNodeID:   e.SourceNodeID,
		TargetNodeID:   e.TargetNodeID,
		SourceAnchorID: e.SourceAnchorID,
		TargetAnchorID: e.TargetAnchorID,
		StartPoint:     e.StartPoint,
		EndPoint:       e.EndPoint,
		Properties:     e.propertiesData(),
		Text:           e.textData(),
		ZIndex:         e.zIndexData(),
	}
	if e.isPolyline() {
		d.PointsList = slices.Clone(e.PointsList)
	}
	return d
}

// orthogonalRoute returns an axis-aligned route from start to end with at
// most two bends through the midline of the dominant axis.
func orthogonalRoute(start, end geometry.Point) []geometry.Point {
	if start.X == end.X || start.Y == end.Y {
		return []geometry.Point{start, end}
	}
	if math.Abs(end.X-start.X) >= math.Abs(end.Y-start.Y) {
		midX := (start.X + end.X) / 2
		return []geometry.Point{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end}
	}
	midY := (start.Y + end.Y) / 2
	return []geometry.Point{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end}
}
