package model

import (
	"maps"

	"github.com/matzehuels/flowmodel/pkg/event"
)

// Text is an element label. Its position is absolute canvas coordinates.
type Text struct {
	Value     string
	X, Y      float64
	Draggable bool
	Editable  bool
}

// owner is implemented by the concrete record embedding an Element.
type owner interface {
	snapshot() any
	deriveAttributes()
}

// Element holds the fields and mutators shared by nodes and edges.
//
// Mutators publish an event carrying the element's snapshot on the owning
// graph's emitter. Fields may be read freely; writes should go through the
// mutators or the graph so that derived state stays consistent.
type Element struct {
	ID                string
	Type              string
	Properties        map[string]any
	Text              Text
	Style             Style
	State             ElementState
	AdditionStateData any
	ZIndex            int
	IsSelected        bool
	IsHovered         bool
	IsHitable         bool
	Visible           bool
	Draggable         bool

	kind  ElementKind
	graph *Graph
	self  owner
}

func newElement(g *Graph, kind ElementKind, typ string, props map[string]any) Element {
	p := make(map[string]any, len(props))
	maps.Copy(p, props)
	return Element{
		Type:       typ,
		Properties: p,
		Style:      Style{},
		State:      StateDefault,
		IsHitable:  true,
		Visible:    true,
		Draggable:  true,
		kind:       kind,
		graph:      g,
	}
}

// Kind reports whether the element is a node or an edge.
func (e *Element) Kind() ElementKind { return e.kind }

// Data returns the element's snapshot ([NodeData] or [EdgeData]).
func (e *Element) Data() any { return e.self.snapshot() }

func (e *Element) emit(t event.Type) {
	if e.graph == nil {
		return
	}
	e.graph.emit(t, e.self.snapshot())
}

// SetSelected marks the element selected or deselected.
func (e *Element) SetSelected(flag bool) {
	if e.IsSelected == flag {
		return
	}
	e.IsSelected = flag
	e.emit(event.SelectChange)
}

// SetHovered marks the element hovered.
func (e *Element) SetHovered(flag bool) {
	if e.IsHovered == flag {
		return
	}
	e.IsHovered = flag
	e.emit(event.HoverChange)
}

// SetHitable controls whether the element reacts to pointer input.
func (e *Element) SetHitable(flag bool) {
	if e.IsHitable == flag {
		return
	}
	e.IsHitable = flag
	e.emit(event.HitableChange)
}

// SetElementState sets the interaction state and its optional payload.
func (e *Element) SetElementState(state ElementState, extra any) {
	if e.State == state && extra == nil && e.AdditionStateData == nil {
		return
	}
	e.State = state
	e.AdditionStateData = extra
	e.emit(event.StateChange)
}

// SetZIndex sets the stacking order.
func (e *Element) SetZIndex(z int) {
	if e.ZIndex == z {
		return
	}
	e.ZIndex = z
	e.emit(event.ZIndexChange)
}

// SetProperty sets one property and re-derives behavior attributes.
func (e *Element) SetProperty(key string, value any) {
	e.Properties[key] = value
	e.self.deriveAttributes()
	e.emit(event.PropertiesChange)
}

// SetProperties merges props into the element's properties.
func (e *Element) SetProperties(props map[string]any) {
	maps.Copy(e.Properties, props)
	e.self.deriveAttributes()
	e.emit(event.PropertiesChange)
}

// DeleteProperty removes a property.
func (e *Element) DeleteProperty(key string) {
	if _, ok := e.Properties[key]; !ok {
		return
	}
	delete(e.Properties, key)
	e.self.deriveAttributes()
	e.emit(event.PropertiesChange)
}

// GetProperties returns a copy of the element's properties.
func (e *Element) GetProperties() map[string]any {
	return maps.Clone(e.Properties)
}

// SetStyle sets a single per-instance style override.
func (e *Element) SetStyle(key string, value any) {
	e.Style[key] = value
	e.emit(event.StyleChange)
}

// SetStyles merges s into the per-instance style overrides.
func (e *Element) SetStyles(s Style) {
	e.Style = e.Style.Merge(s)
	e.emit(event.StyleChange)
}

// UpdateStyles replaces all per-instance style overrides with s.
func (e *Element) UpdateStyles(s Style) {
	e.Style = Style{}.Merge(s)
	e.emit(event.StyleChange)
}

// UpdateText sets the label value.
func (e *Element) UpdateText(value string) {
	if e.Text.Value == value {
		return
	}
	e.Text.Value = value
	e.self.deriveAttributes()
	e.emit(event.TextUpdate)
}

// MoveText translates the label.
func (e *Element) MoveText(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	e.moveText(dx, dy)
	e.emit(event.TextMove)
}

func (e *Element) moveText(dx, dy float64) {
	e.Text.X += dx
	e.Text.Y += dy
}

func (e *Element) textData() *TextData {
	if e.Text.Value == "" {
		return nil
	}
	return &TextData{X: e.Text.X, Y: e.Text.Y, Value: e.Text.Value}
}

func (e *Element) zIndexData() *int {
	if e.graph == nil || e.graph.overlapMode != OverlapModeIncrease {
		return nil
	}
	z := e.ZIndex
	return &z
}

// propertiesData returns a non-nil copy for snapshots.
func (e *Element) propertiesData() map[string]any {
	p := maps.Clone(e.Properties)
	if p == nil {
		p = map[string]any{}
	}
	return p
}

func buildText(cfg *TextConfig, x, y float64) Text {
	t := Text{X: x, Y: y, Editable: true}
	if cfg == nil {
		return t
	}
	t.Value = cfg.Value
	t.Draggable = cfg.Draggable
	if cfg.X != nil {
		t.X = *cfg.X
	}
	if cfg.Y != nil {
		t.Y = *cfg.Y
	}
	if cfg.Editable != nil {
		t.Editable = *cfg.Editable
	}
	return t
}
