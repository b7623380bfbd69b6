package model

import (
	"fmt"
	"math"
	"strings"
)

// Behavior is a registered type's capability bundle. It is either a
// [NodeBehavior] or an [EdgeBehavior].
type Behavior interface {
	Kind() ElementKind
	ModelType() ModelType
}

// NodeBehavior customizes nodes of one registered type. Embed [BaseNode] or
// one of the built-ins and override what differs.
type NodeBehavior interface {
	Behavior
	// CreateID returns a custom id, or "" to fall back to the graph's generator.
	CreateID(n *Node) string
	// SetAttributes derives attributes (size, anchors, rules) from properties.
	SetAttributes(n *Node)
	DefaultAnchors(n *Node) []Anchor
	NodeStyle(n *Node) Style
	TextStyle(n *Node) Style
	Size(n *Node) (width, height float64)
}

// EdgeBehavior customizes edges of one registered type.
type EdgeBehavior interface {
	Behavior
	CreateID(e *Edge) string
	SetAttributes(e *Edge)
	EdgeStyle(e *Edge) Style
	TextStyle(e *Edge) Style
}

// ===== Nodes =====

// BaseNode is the neutral node behavior: stored size, no anchors, theme
// base style.
type BaseNode struct{}

func (BaseNode) Kind() ElementKind               { return KindNode }
func (BaseNode) ModelType() ModelType            { return ModelNode }
func (BaseNode) CreateID(*Node) string           { return "" }
func (BaseNode) SetAttributes(*Node)             {}
func (BaseNode) DefaultAnchors(*Node) []Anchor   { return nil }
func (BaseNode) Size(n *Node) (float64, float64) { return n.width, n.height }

func (BaseNode) NodeStyle(n *Node) Style {
	return nodeTheme(n).BaseNode.Merge(n.Style)
}

func (BaseNode) TextStyle(n *Node) Style {
	return nodeTheme(n).NodeText.Merge()
}

// RectNode is a rectangle with one anchor at the middle of each side.
type RectNode struct{ BaseNode }

func (RectNode) ModelType() ModelType { return ModelRectNode }

// SetAttributes sizes the rectangle from the "width" and "height" properties.
func (RectNode) SetAttributes(n *Node) {
	w, h := n.StoredSize()
	p := Style(n.Properties)
	n.SetSize(p.Float("width", w), p.Float("height", h))
}

func (RectNode) DefaultAnchors(n *Node) []Anchor {
	w, h := n.Width()/2, n.Height()/2
	return []Anchor{
		{ID: anchorID(n.ID, 0), X: n.X, Y: n.Y - h},
		{ID: anchorID(n.ID, 1), X: n.X + w, Y: n.Y},
		{ID: anchorID(n.ID, 2), X: n.X, Y: n.Y + h},
		{ID: anchorID(n.ID, 3), X: n.X - w, Y: n.Y},
	}
}

func (RectNode) NodeStyle(n *Node) Style {
	th := nodeTheme(n)
	return th.BaseNode.Merge(th.Rect, n.Style)
}

// CircleNode is a circle whose radius comes from the "r" property.
type CircleNode struct{ BaseNode }

func (CircleNode) ModelType() ModelType { return ModelCircleNode }

func (CircleNode) SetAttributes(n *Node) {
	r := Style(n.Properties).Float("r", DefaultCircleR)
	n.SetSize(2*r, 2*r)
}

func (CircleNode) DefaultAnchors(n *Node) []Anchor {
	r := n.Width() / 2
	return []Anchor{
		{ID: anchorID(n.ID, 0), X: n.X, Y: n.Y - r},
		{ID: anchorID(n.ID, 1), X: n.X + r, Y: n.Y},
		{ID: anchorID(n.ID, 2), X: n.X, Y: n.Y + r},
		{ID: anchorID(n.ID, 3), X: n.X - r, Y: n.Y},
	}
}

func (CircleNode) NodeStyle(n *Node) Style {
	th := nodeTheme(n)
	return th.BaseNode.Merge(th.Circle, n.Style)
}

// TextNode is a free-standing label sized to its text.
type TextNode struct{ BaseNode }

func (TextNode) ModelType() ModelType { return ModelTextNode }

func (TextNode) TextStyle(n *Node) Style {
	th := nodeTheme(n)
	return th.NodeText.Merge(th.Text)
}

func (b TextNode) Size(n *Node) (float64, float64) {
	fontSize := b.TextStyle(n).Float("fontSize", 12)
	return MeasureText(n.Text.Value, fontSize)
}

// MeasureText estimates the box of a multi-line label. Wide runes count as
// two columns; each column is half the font size.
func MeasureText(value string, fontSize float64) (width, height float64) {
	rows := strings.Split(value, "\n")
	longest := 0
	for _, row := range rows {
		if n := textColumns(row); n > longest {
			longest = n
		}
	}
	width = math.Ceil(float64(longest)/2)*fontSize + fontSize/4
	height = float64(len(rows))*(fontSize+2) + fontSize/4
	return width, height
}

func textColumns(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func anchorID(nodeID string, i int) string { return fmt.Sprintf("%s_%d", nodeID, i) }

func nodeTheme(n *Node) *Theme {
	if n.graph == nil {
		th := DefaultTheme()
		return &th
	}
	return &n.graph.theme
}

// ===== Edges =====

// BaseEdge is the neutral edge behavior.
type BaseEdge struct{}

func (BaseEdge) Kind() ElementKind     { return KindEdge }
func (BaseEdge) ModelType() ModelType  { return ModelEdge }
func (BaseEdge) CreateID(*Edge) string { return "" }
func (BaseEdge) SetAttributes(*Edge)   {}

func (BaseEdge) EdgeStyle(e *Edge) Style {
	return edgeTheme(e).BaseEdge.Merge(e.Style)
}

func (BaseEdge) TextStyle(e *Edge) Style {
	return edgeTheme(e).EdgeText.Merge()
}

// LineEdge is a straight segment between its endpoints.
type LineEdge struct{ BaseEdge }

func (LineEdge) ModelType() ModelType { return ModelLineEdge }

func (LineEdge) EdgeStyle(e *Edge) Style {
	th := edgeTheme(e)
	return th.BaseEdge.Merge(th.Line, e.Style)
}

// PolylineEdge is an axis-aligned route with bends.
type PolylineEdge struct{ BaseEdge }

func (PolylineEdge) ModelType() ModelType { return ModelPolylineEdge }

func (PolylineEdge) EdgeStyle(e *Edge) Style {
	th := edgeTheme(e)
	return th.BaseEdge.Merge(th.Polyline, e.Style)
}

func edgeTheme(e *Edge) *Theme {
	if e.graph == nil {
		th := DefaultTheme()
		return &th
	}
	return &e.graph.theme
}
