package model

import (
	"math"

	"github.com/matzehuels/flowmodel/pkg/geometry"
)

// Anchor is a named connection point on a node in absolute coordinates.
type Anchor struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Point returns the anchor's position.
func (a Anchor) Point() geometry.Point { return geometry.Point{X: a.X, Y: a.Y} }

// Node is a graph vertex. X and Y are the center of its bounding box.
type Node struct {
	Element

	X, Y          float64
	AnchorsOffset []AnchorOffset
	IsShowAnchor  bool
	IsDragging    bool
	AutoToFront   bool
	Virtual       bool

	SourceRules []ConnectRule
	TargetRules []ConnectRule
	MoveRules   []MoveRule

	width, height float64
	behavior      NodeBehavior
}

func (n *Node) snapshot() any { return n.Data() }

func (n *Node) deriveAttributes() { n.behavior.SetAttributes(n) }

// Behavior returns the node's type behavior.
func (n *Node) Behavior() NodeBehavior { return n.behavior }

// ModelType returns the behavior's model type.
func (n *Node) ModelType() ModelType { return n.behavior.ModelType() }

// Position returns the node center.
func (n *Node) Position() geometry.Point { return geometry.Point{X: n.X, Y: n.Y} }

// Width returns the node's current width as computed by its behavior.
func (n *Node) Width() float64 {
	w, _ := n.behavior.Size(n)
	return w
}

// Height returns the node's current height as computed by its behavior.
func (n *Node) Height() float64 {
	_, h := n.behavior.Size(n)
	return h
}

// StoredSize returns the width and height stored on the node, which fixed-size
// behaviors report as the node's size.
func (n *Node) StoredSize() (float64, float64) { return n.width, n.height }

// SetSize stores the node's width and height. It is meant for
// [NodeBehavior.SetAttributes], whose caller publishes the change.
func (n *Node) SetSize(w, h float64) {
	n.width, n.height = w, h
}

// Bounds returns the node's bounding box.
func (n *Node) Bounds() geometry.Bounds {
	w, h := n.behavior.Size(n)
	return geometry.BoundsFromCenter(n.X, n.Y, w, h)
}

// Anchors returns the node's connection points. Explicit offsets take
// precedence over the behavior's defaults.
func (n *Node) Anchors() []Anchor {
	if len(n.AnchorsOffset) == 0 {
		return n.behavior.DefaultAnchors(n)
	}
	out := make([]Anchor, len(n.AnchorsOffset))
	for i, off := range n.AnchorsOffset {
		id := off.ID
		if id == "" {
			id = anchorID(n.ID, i)
		}
		out[i] = Anchor{ID: id, X: n.X + off.DX, Y: n.Y + off.DY}
	}
	return out
}

// AnchorByID returns the anchor with the given id, or nil.
func (n *Node) AnchorByID(id string) *Anchor {
	for _, a := range n.Anchors() {
		if a.ID == id {
			return &a
		}
	}
	return nil
}

// ClosestAnchor returns the anchor nearest to p. Nodes without anchors
// report their center.
func (n *Node) ClosestAnchor(p geometry.Point) Anchor {
	anchors := n.Anchors()
	if len(anchors) == 0 {
		return Anchor{ID: n.ID, X: n.X, Y: n.Y}
	}
	best, bestDist := anchors[0], math.Inf(1)
	for _, a := range anchors {
		if d := geometry.Distance(a.Point(), p); d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

// NodeStyle returns the resolved node style.
func (n *Node) NodeStyle() Style { return n.behavior.NodeStyle(n) }

// TextStyle returns the resolved label style.
func (n *Node) TextStyle() Style { return n.behavior.TextStyle(n) }

// AnchorStyle returns the resolved anchor style.
func (n *Node) AnchorStyle() Style {
	if n.graph == nil {
		return Style{}
	}
	return n.graph.theme.Anchor.Merge()
}

// SetHovered marks the node hovered and toggles its anchors with it.
func (n *Node) SetHovered(flag bool) {
	n.IsShowAnchor = flag
	n.Element.SetHovered(flag)
}

// SetIsShowAnchor toggles anchor visibility.
func (n *Node) SetIsShowAnchor(flag bool) { n.IsShowAnchor = flag }

// AddMoveRule appends a rule consulted by [Node.MoveDistance].
func (n *Node) AddMoveRule(r MoveRule) { n.MoveRules = append(n.MoveRules, r) }

// AddSourceRule appends a rule checked when the node is an edge source.
func (n *Node) AddSourceRule(r ConnectRule) { n.SourceRules = append(n.SourceRules, r) }

// AddTargetRule appends a rule checked when the node is an edge target.
func (n *Node) AddTargetRule(r ConnectRule) { n.TargetRules = append(n.TargetRules, r) }

// MoveDistance resolves the proposed displacement through the node's move
// rules and the graph-wide rules, commits the allowed part (node center and
// label move together) and returns it. With ignoreRules the displacement is
// committed unchanged.
func (n *Node) MoveDistance(dx, dy float64, ignoreRules bool) (float64, float64) {
	if !ignoreRules {
		dx, dy = applyMoveRules(n.MoveRules, n, dx, dy)
		if n.graph != nil && (dx != 0 || dy != 0) {
			dx, dy = applyMoveRules(n.graph.nodeMoveRules, n, dx, dy)
		}
	}
	if dx != 0 || dy != 0 {
		n.translate(dx, dy)
	}
	return dx, dy
}

func (n *Node) translate(dx, dy float64) {
	n.X += dx
	n.Y += dy
	n.moveText(dx, dy)
}

// IsAllowConnectedAsSource evaluates the node's source rules for a
// connection to target.
func (n *Node) IsAllowConnectedAsSource(target *Node, sourceAnchor, targetAnchor *Anchor, edgeID string) ConnectRuleResult {
	return evalConnectRules(n.SourceRules, n, target, sourceAnchor, targetAnchor, edgeID)
}

// IsAllowConnectedAsTarget evaluates the node's target rules for a
// connection from source.
func (n *Node) IsAllowConnectedAsTarget(source *Node, sourceAnchor, targetAnchor *Anchor, edgeID string) ConnectRuleResult {
	return evalConnectRules(n.TargetRules, source, n, sourceAnchor, targetAnchor, edgeID)
}

// Data returns the node's serializable snapshot.
func (n *Node) Data() NodeData {
	return NodeData{
		ID:         n.ID,
		Type:       n.Type,
		X:          n.X,
		Y:          n.Y,
		Properties: n.propertiesData(),
		Text:       n.textData(),
		ZIndex:     n.zIndexData(),
	}
}
