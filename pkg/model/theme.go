package model

import "maps"

// Style holds presentation attributes (fill, stroke, fontSize, ...).
// Styles never affect geometry except through [NodeBehavior.Size] for
// text-measured nodes.
type Style map[string]any

// Merge returns a new style with s overlaid by each of others in order.
// Later styles win.
func (s Style) Merge(others ...Style) Style {
	out := make(Style, len(s))
	maps.Copy(out, s)
	for _, o := range others {
		maps.Copy(out, o)
	}
	return out
}

// Float returns the numeric value stored under key, or def.
func (s Style) Float(key string, def float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Theme is the set of default styles per element family. Behaviors merge the
// relevant theme entries with per-instance overrides; the instance wins.
type Theme struct {
	BaseNode Style `toml:"base_node" json:"baseNode"`
	BaseEdge Style `toml:"base_edge" json:"baseEdge"`
	Rect     Style `toml:"rect" json:"rect"`
	Circle   Style `toml:"circle" json:"circle"`
	Text     Style `toml:"text" json:"text"`
	NodeText Style `toml:"node_text" json:"nodeText"`
	EdgeText Style `toml:"edge_text" json:"edgeText"`
	Line     Style `toml:"line" json:"line"`
	Polyline Style `toml:"polyline" json:"polyline"`
	Anchor   Style `toml:"anchor" json:"anchor"`
}

// DefaultTheme returns a fresh copy of the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		BaseNode: Style{"fill": "#FFFFFF", "stroke": "#000000", "strokeWidth": 2.0},
		BaseEdge: Style{"stroke": "#000000", "strokeWidth": 2.0},
		Rect:     Style{},
		Circle:   Style{},
		Text:     Style{"color": "#000000", "fontSize": 12.0, "background": "transparent"},
		NodeText: Style{"color": "#000000", "overflowMode": "default", "lineHeight": 1.2, "fontSize": 12.0},
		EdgeText: Style{"textWidth": 100.0, "overflowMode": "default", "fontSize": 12.0, "background": "#FFFFFF"},
		Line:     Style{},
		Polyline: Style{},
		Anchor:   Style{"stroke": "#000000", "fill": "#FFFFFF", "r": 4.0},
	}
}

// Override returns t with every non-empty style in o merged on top.
func (t Theme) Override(o Theme) Theme {
	merge := func(base, over Style) Style {
		if len(over) == 0 {
			return base
		}
		return base.Merge(over)
	}
	return Theme{
		BaseNode: merge(t.BaseNode, o.BaseNode),
		BaseEdge: merge(t.BaseEdge, o.BaseEdge),
		Rect:     merge(t.Rect, o.Rect),
		Circle:   merge(t.Circle, o.Circle),
		Text:     merge(t.Text, o.Text),
		NodeText: merge(t.NodeText, o.NodeText),
		EdgeText: merge(t.EdgeText, o.EdgeText),
		Line:     merge(t.Line, o.Line),
		Polyline: merge(t.Polyline, o.Polyline),
		Anchor:   merge(t.Anchor, o.Anchor),
	}
}
