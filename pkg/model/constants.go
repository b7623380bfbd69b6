package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ElementKind distinguishes nodes from edges.
type ElementKind int

const (
	KindNode ElementKind = iota
	KindEdge
)

// String returns "node" or "edge".
func (k ElementKind) String() string {
	if k == KindEdge {
		return "edge"
	}
	return "node"
}

// ElementState is the interaction mode of an element.
// States are mutually exclusive per element; any state is reachable from any other.
type ElementState int

const (
	StateDefault ElementState = iota + 1
	StateTextEdit
	StateShowMenu
	StateAllowConnect
	StateNotAllowConnect
)

var stateNames = map[ElementState]string{
	StateDefault:         "default",
	StateTextEdit:        "text-edit",
	StateShowMenu:        "show-menu",
	StateAllowConnect:    "allow-connect",
	StateNotAllowConnect: "not-allow-connect",
}

// String returns the state's name.
func (s ElementState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseElementState parses a state name or its numeric value.
func ParseElementState(s string) (ElementState, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for st, name := range stateNames {
		if name == s {
			return st, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := stateNames[ElementState(n)]; ok {
			return ElementState(n), nil
		}
	}
	return 0, fmt.Errorf("unknown element state %q", s)
}

// ModelType discriminates the concrete behavior of an element. Geometry and
// label placement rules switch on it.
type ModelType string

const (
	ModelNode         ModelType = "node"
	ModelRectNode     ModelType = "rect-node"
	ModelCircleNode   ModelType = "circle-node"
	ModelTextNode     ModelType = "text-node"
	ModelEdge         ModelType = "edge"
	ModelLineEdge     ModelType = "line-edge"
	ModelPolylineEdge ModelType = "polyline-edge"
)

// OverlapMode is the z-order policy applied when elements are brought to front.
type OverlapMode int

const (
	// OverlapModeDefault promotes the front element temporarily; clearing the
	// selection restores its previous z-index.
	OverlapModeDefault OverlapMode = 0
	// OverlapModeIncrease raises the front element permanently above all others.
	OverlapModeIncrease OverlapMode = 1
)

// String returns "default" or "increase".
func (m OverlapMode) String() string {
	if m == OverlapModeIncrease {
		return "increase"
	}
	return "default"
}

// ParseOverlapMode accepts "default", "increase", "0" or "1".
func ParseOverlapMode(s string) (OverlapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "0":
		return OverlapModeDefault, nil
	case "increase", "1":
		return OverlapModeIncrease, nil
	}
	return 0, fmt.Errorf("unknown overlap mode %q", s)
}

// MaxZIndex is the reserved z-index held by the element promoted with
// [Graph.ToFront] under [OverlapModeDefault].
const MaxZIndex = 9999

// Default z-indexes for newly created elements under OverlapModeDefault.
const (
	defaultNodeZIndex = 1
	defaultEdgeZIndex = 0
)

// Default node geometry.
const (
	DefaultNodeWidth  = 100.0
	DefaultNodeHeight = 80.0
	DefaultCircleR    = 50.0
	DefaultEdgeType   = "polyline"
)

type zPos int

const (
	zLiteral zPos = iota
	zTop
	zBottom
)

// ZIndex is the target of [Graph.SetElementZIndex]: a literal value, or the
// relative positions [ZTop] and [ZBottom] resolved against the current graph.
type ZIndex struct {
	value int
	pos   zPos
}

var (
	// ZTop resolves to one above the current maximum z-index.
	ZTop = ZIndex{pos: zTop}
	// ZBottom resolves to one below the current minimum z-index.
	ZBottom = ZIndex{pos: zBottom}
)

// ZAt returns a literal z-index.
func ZAt(v int) ZIndex { return ZIndex{value: v} }

// ParseZIndex parses "top", "bottom" or an integer.
func ParseZIndex(s string) (ZIndex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return ZTop, nil
	case "bottom":
		return ZBottom, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return ZIndex{}, fmt.Errorf("invalid z-index %q: must be top, bottom or an integer", s)
	}
	return ZAt(n), nil
}

// String returns "top", "bottom" or the literal value.
func (z ZIndex) String() string {
	switch z.pos {
	case zTop:
		return "top"
	case zBottom:
		return "bottom"
	}
	return strconv.Itoa(z.value)
}
