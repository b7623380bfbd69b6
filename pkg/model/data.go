package model

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/flowmodel/pkg/geometry"
)

// TextConfig describes an element label at creation time. It decodes from
// either a bare string (the label value, positioned at the element) or an
// object with explicit coordinates.
type TextConfig struct {
	Value     string   `json:"value" toml:"value" bson:"value"`
	X         *float64 `json:"x,omitempty" toml:"x" bson:"x,omitempty"`
	Y         *float64 `json:"y,omitempty" toml:"y" bson:"y,omitempty"`
	Draggable bool     `json:"draggable,omitempty" toml:"draggable" bson:"draggable,omitempty"`
	Editable  *bool    `json:"editable,omitempty" toml:"editable" bson:"editable,omitempty"`
}

// TextValue returns a label config positioned at its element.
func TextValue(v string) *TextConfig { return &TextConfig{Value: v} }

// TextAt returns a label config with an explicit position.
func TextAt(v string, x, y float64) *TextConfig { return &TextConfig{Value: v, X: &x, Y: &y} }

// UnmarshalJSON accepts the string shorthand as well as the object form.
func (t *TextConfig) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = TextConfig{Value: s}
		return nil
	}
	type plain TextConfig
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = TextConfig(p)
	return nil
}

// UnmarshalTOML accepts the string shorthand as well as an inline table.
func (t *TextConfig) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*t = TextConfig{Value: v}
		return nil
	case map[string]any:
		out := TextConfig{}
		if s, ok := v["value"].(string); ok {
			out.Value = s
		}
		if x, ok := tomlFloat(v["x"]); ok {
			out.X = &x
		}
		if y, ok := tomlFloat(v["y"]); ok {
			out.Y = &y
		}
		if d, ok := v["draggable"].(bool); ok {
			out.Draggable = d
		}
		if e, ok := v["editable"].(bool); ok {
			out.Editable = &e
		}
		*t = out
		return nil
	}
	return fmt.Errorf("text: expected string or table, got %T", data)
}

func tomlFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// AnchorOffset is an anchor position relative to the node center.
type AnchorOffset struct {
	ID string  `json:"id,omitempty" toml:"id" bson:"id,omitempty"`
	DX float64 `json:"dx" toml:"dx" bson:"dx"`
	DY float64 `json:"dy" toml:"dy" bson:"dy"`
}

// NodeConfig is the input to [Graph.AddNode].
type NodeConfig struct {
	ID            string         `json:"id,omitempty" toml:"id"`
	Type          string         `json:"type" toml:"type"`
	X             float64        `json:"x" toml:"x"`
	Y             float64        `json:"y" toml:"y"`
	Width         float64        `json:"width,omitempty" toml:"width"`
	Height        float64        `json:"height,omitempty" toml:"height"`
	Text          *TextConfig    `json:"text,omitempty" toml:"text"`
	Properties    map[string]any `json:"properties,omitempty" toml:"properties"`
	ZIndex        int            `json:"zIndex,omitempty" toml:"z_index"`
	AnchorsOffset []AnchorOffset `json:"anchorsOffset,omitempty" toml:"anchors_offset"`
}

// EdgeConfig is the input to [Graph.AddEdge]. Geometry left empty is derived
// from the endpoint nodes' anchors.
type EdgeConfig struct {
	ID                 string           `json:"id,omitempty" toml:"id"`
	Type               string           `json:"type,omitempty" toml:"type"`
	SourceNodeID       string           `json:"sourceNodeId" toml:"source"`
	TargetNodeID       string           `json:"targetNodeId" toml:"target"`
	SourceAnchorID     string           `json:"sourceAnchorId,omitempty" toml:"source_anchor"`
	TargetAnchorID     string           `json:"targetAnchorId,omitempty" toml:"target_anchor"`
	StartPoint         *geometry.Point  `json:"startPoint,omitempty" toml:"start"`
	EndPoint           *geometry.Point  `json:"endPoint,omitempty" toml:"end"`
	PointsList         []geometry.Point `json:"pointsList,omitempty" toml:"points"`
	Text               *TextConfig      `json:"text,omitempty" toml:"text"`
	Properties         map[string]any   `json:"properties,omitempty" toml:"properties"`
	ZIndex             int              `json:"zIndex,omitempty" toml:"z_index"`
	CustomTextPosition bool             `json:"customTextPosition,omitempty" toml:"custom_text_position"`
}

// hasGeometry reports whether the config pins any edge coordinates.
func (c EdgeConfig) hasGeometry() bool {
	return c.StartPoint != nil || c.EndPoint != nil || len(c.PointsList) > 0
}

// TextData is the serialized form of a non-empty label.
type TextData struct {
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Value string  `json:"value" bson:"value"`
}

// NodeData is the serializable snapshot of a node. ZIndex is present only
// under [OverlapModeIncrease]; Text only when the label is non-empty.
type NodeData struct {
	ID         string         `json:"id" bson:"id"`
	Type       string         `json:"type" bson:"type"`
	X          float64        `json:"x" bson:"x"`
	Y          float64        `json:"y" bson:"y"`
	Properties map[string]any `json:"properties" bson:"properties"`
	Text       *TextData      `json:"text,omitempty" bson:"text,omitempty"`
	ZIndex     *int           `json:"zIndex,omitempty" bson:"zIndex,omitempty"`
}

// Config converts the snapshot back into a creation config.
func (d NodeData) Config() NodeConfig {
	c := NodeConfig{ID: d.ID, Type: d.Type, X: d.X, Y: d.Y, Properties: d.Properties}
	if d.Text != nil {
		c.Text = TextAt(d.Text.Value, d.Text.X, d.Text.Y)
	}
	if d.ZIndex != nil {
		c.ZIndex = *d.ZIndex
	}
	return c
}

// EdgeData is the serializable snapshot of an edge.
type EdgeData struct {
	ID             string           `json:"id" bson:"id"`
	Type           string           `json:"type" bson:"type"`
	SourceNodeID   string           `json:"sourceNodeId" bson:"sourceNodeId"`
	TargetNodeID   string           `json:"targetNodeId" bson:"targetNodeId"`
	SourceAnchorID string           `json:"sourceAnchorId,omitempty" bson:"sourceAnchorId,omitempty"`
	TargetAnchorID string           `json:"targetAnchorId,omitempty" bson:"targetAnchorId,omitempty"`
	StartPoint     geometry.Point   `json:"startPoint" bson:"startPoint"`
	EndPoint       geometry.Point   `json:"endPoint" bson:"endPoint"`
	PointsList     []geometry.Point `json:"pointsList,omitempty" bson:"pointsList,omitempty"`
	Properties     map[string]any   `json:"properties" bson:"properties"`
	Text           *TextData        `json:"text,omitempty" bson:"text,omitempty"`
	ZIndex         *int             `json:"zIndex,omitempty" bson:"zIndex,omitempty"`
}

// Config converts the snapshot back into a creation config that reproduces
// the same geometry.
func (d EdgeData) Config() EdgeConfig {
	start, end := d.StartPoint, d.EndPoint
	c := EdgeConfig{
		ID:             d.ID,
		Type:           d.Type,
		SourceNodeID:   d.SourceNodeID,
		TargetNodeID:   d.TargetNodeID,
		SourceAnchorID: d.SourceAnchorID,
		TargetAnchorID: d.TargetAnchorID,
		StartPoint:     &start,
		EndPoint:       &end,
		PointsList:     d.PointsList,
		Properties:     d.Properties,
	}
	if d.Text != nil {
		c.Text = TextAt(d.Text.Value, d.Text.X, d.Text.Y)
	}
	if d.ZIndex != nil {
		c.ZIndex = *d.ZIndex
	}
	return c
}

// GraphData is the serializable snapshot of a whole graph.
type GraphData struct {
	Nodes []NodeData `json:"nodes" bson:"nodes"`
	Edges []EdgeData `json:"edges" bson:"edges"`
}

// Config converts the snapshot into the input of [Graph.Load].
func (d GraphData) Config() GraphConfig {
	c := GraphConfig{
		Nodes: make([]NodeConfig, len(d.Nodes)),
		Edges: make([]EdgeConfig, len(d.Edges)),
	}
	for i, n := range d.Nodes {
		c.Nodes[i] = n.Config()
	}
	for i, e := range d.Edges {
		c.Edges[i] = e.Config()
	}
	return c
}

// GraphConfig is a document of element configs. Snapshots decode into it
// unchanged; hand-written documents may use the config shorthands.
type GraphConfig struct {
	Nodes []NodeConfig `json:"nodes" toml:"nodes"`
	Edges []EdgeConfig `json:"edges" toml:"edges"`
}
