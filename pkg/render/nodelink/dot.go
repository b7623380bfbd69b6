package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/render"
)

// pointsPerUnit converts canvas units to Graphviz inches.
const pointsPerUnit = 72.0

// Options configures diagram rendering.
type Options struct {
	// Detailed includes the element id, type and properties in labels.
	// When false, only the label text is shown.
	Detailed bool
	// Highlight draws selected elements with a thicker accent outline.
	Highlight bool
}

// ToDOT converts a graph to Graphviz DOT with every node pinned at its
// canvas position. The result is meant for the neato engine, which honors
// pinned positions; [RenderSVG] selects it automatically.
//
// Canvas y grows downwards, so y is negated. Elements are emitted in
// ascending z-index order so that higher elements are drawn on top.
func ToDOT(g *model.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  splines=%s;\n", splines(g))
	buf.WriteString("  node [fixedsize=true, style=filled, fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.7, fontsize=10];\n")
	buf.WriteString("\n")

	nodes := g.Nodes()
	slices.SortStableFunc(nodes, func(a, b *model.Node) int { return cmp.Compare(a.ZIndex, b.ZIndex) })
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	edges := g.Edges()
	slices.SortStableFunc(edges, func(a, b *model.Edge) int { return cmp.Compare(a.ZIndex, b.ZIndex) })
	for _, e := range edges {
		if g.NodeByID(e.SourceNodeID) == nil || g.NodeByID(e.TargetNodeID) == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.SourceNodeID, e.TargetNodeID, strings.Join(edgeAttrs(e, opts), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func splines(g *model.Graph) string {
	for _, e := range g.Edges() {
		if e.ModelType() == model.ModelPolylineEdge {
			return "ortho"
		}
	}
	return "line"
}

func nodeAttrs(n *model.Node, opts Options) []string {
	style := n.NodeStyle()
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(&n.Element, n.Text.Value, opts.Detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", num(n.X), num(-n.Y)),
		fmt.Sprintf("width=%s", num(n.Width()/pointsPerUnit)),
		fmt.Sprintf("height=%s", num(n.Height()/pointsPerUnit)),
		fmt.Sprintf("shape=%s", shape(n.ModelType())),
	}
	if fill, ok := style["fill"].(string); ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	attrs = append(attrs, strokeAttrs(style, n.IsSelected && opts.Highlight)...)
	if color, ok := n.TextStyle()["color"].(string); ok {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", color))
	}
	return attrs
}

func edgeAttrs(e *model.Edge, opts Options) []string {
	var attrs []string
	if label := fmtLabel(&e.Element, e.Text.Value, opts.Detailed); label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
	}
	attrs = append(attrs, strokeAttrs(e.EdgeStyle(), e.IsSelected && opts.Highlight)...)
	return attrs
}

func strokeAttrs(style model.Style, selected bool) []string {
	var attrs []string
	color, _ := style["stroke"].(string)
	width := style.Float("strokeWidth", 1)
	if selected {
		color = "#1E90FF"
		width *= 2
	}
	if color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", color))
	}
	return append(attrs, fmt.Sprintf("penwidth=%s", num(width)))
}

func shape(t model.ModelType) string {
	switch t {
	case model.ModelCircleNode:
		return "circle"
	case model.ModelTextNode:
		return "plaintext"
	}
	return "box"
}

func fmtLabel(el *model.Element, text string, detailed bool) string {
	if !detailed {
		return text
	}
	parts := []string{fmt.Sprintf("%s (%s)", el.ID, el.Type)}
	if text != "" {
		parts = append(parts, text)
	}
	for _, k := range slices.Sorted(maps.Keys(el.Properties)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, el.Properties[k]))
	}
	return strings.Join(parts, "\n")
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
