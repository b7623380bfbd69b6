package model

import (
	"github.com/matzehuels/flowmodel/pkg/event"
)

// ===== Selection =====

// SelectNodeByID selects a node. Without multiple the current selection is
// cleared first.
func (g *Graph) SelectNodeByID(id string, multiple bool) {
	g.selectElement(id, multiple, func() *Element {
		if n := g.NodeByID(id); n != nil {
			return &n.Element
		}
		return nil
	})
}

// SelectEdgeByID selects an edge. Without multiple the current selection is
// cleared first.
func (g *Graph) SelectEdgeByID(id string, multiple bool) {
	g.selectElement(id, multiple, func() *Element {
		if e := g.EdgeByID(id); e != nil {
			return &e.Element
		}
		return nil
	})
}

// SelectElementByID selects a node or edge.
func (g *Graph) SelectElementByID(id string, multiple bool) {
	g.selectElement(id, multiple, func() *Element { return g.ElementByID(id) })
}

func (g *Graph) selectElement(id string, multiple bool, find func() *Element) {
	if !multiple {
		g.clearSelection()
	}
	el := find()
	if el == nil {
		g.logger.Warn("select: element not found", "id", id)
		g.emitSelection()
		return
	}
	el.SetSelected(true)
	g.emitSelection()
}

// ClearSelectElements deselects everything. Under [OverlapModeDefault] the
// element promoted by [Graph.ToFront] gets its previous z-index back.
func (g *Graph) ClearSelectElements() {
	g.clearSelection()
	g.emitSelection()
}

func (g *Graph) clearSelection() {
	for _, n := range g.nodes {
		n.SetSelected(false)
	}
	for _, e := range g.edges {
		e.SetSelected(false)
	}
	if g.overlapMode == OverlapModeDefault {
		g.demoteTop()
	}
}

func (g *Graph) emitSelection() {
	ids := []string{}
	for _, el := range g.SelectElements() {
		ids = append(ids, el.ID)
	}
	g.emit(event.SelectionChange, ids)
}

// SelectElements returns the selected nodes followed by the selected edges.
func (g *Graph) SelectElements() []*Element {
	var out []*Element
	for _, n := range g.nodes {
		if n.IsSelected {
			out = append(out, &n.Element)
		}
	}
	for _, e := range g.edges {
		if e.IsSelected {
			out = append(out, &e.Element)
		}
	}
	return out
}

// SelectNodes returns the selected nodes.
func (g *Graph) SelectNodes() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.IsSelected {
			out = append(out, n)
		}
	}
	return out
}

// ===== State =====

// SetElementStateByID puts one element into state and resets every other
// element to [StateDefault].
func (g *Graph) SetElementStateByID(id string, state ElementState, extra any) {
	for _, n := range g.nodes {
		if n.ID == id {
			n.SetElementState(state, extra)
		} else if n.State != StateDefault {
			n.SetElementState(StateDefault, nil)
		}
	}
	for _, e := range g.edges {
		if e.ID == id {
			e.SetElementState(state, extra)
		} else if e.State != StateDefault {
			e.SetElementState(StateDefault, nil)
		}
	}
}

// TextEditElement returns the element being text-edited, or nil.
func (g *Graph) TextEditElement() *Element {
	for _, n := range g.nodes {
		if n.State == StateTextEdit {
			return &n.Element
		}
	}
	for _, e := range g.edges {
		if e.State == StateTextEdit {
			return &e.Element
		}
	}
	return nil
}

// ===== Stacking =====

// ToFront brings an element to the front. Under [OverlapModeDefault] it is
// temporarily promoted to [MaxZIndex] and the previously promoted element is
// restored; under [OverlapModeIncrease] it is permanently raised above all
// others.
func (g *Graph) ToFront(id string) {
	el := g.ElementByID(id)
	if el == nil {
		g.logger.Warn("to front: element not found", "id", id)
		return
	}
	if g.overlapMode == OverlapModeIncrease {
		g.SetElementZIndex(id, ZTop)
		return
	}
	if g.topElement == id {
		return
	}
	g.demoteTop()
	g.topElement = id
	g.topElementZ = el.ZIndex
	el.SetZIndex(MaxZIndex)
}

// demoteTop restores the promoted element's previous z-index.
func (g *Graph) demoteTop() {
	if g.topElement == "" {
		return
	}
	if prev := g.ElementByID(g.topElement); prev != nil {
		prev.SetZIndex(g.topElementZ)
	}
	g.topElement = ""
}

// SetElementZIndex sets an element's z-index to a literal value or to the
// relative [ZTop] / [ZBottom] positions.
func (g *Graph) SetElementZIndex(id string, z ZIndex) {
	el := g.ElementByID(id)
	if el == nil {
		g.logger.Warn("z-index: element not found", "id", id)
		return
	}
	switch z.pos {
	case zTop:
		top, _ := g.zExtent(true)
		el.SetZIndex(top + 1)
	case zBottom:
		bottom, _ := g.zExtent(false)
		el.SetZIndex(bottom - 1)
	default:
		el.SetZIndex(z.value)
	}
}
