// Package nodelink renders flowchart graphs as Graphviz node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Geometry
//
// Nodes are pinned at their canvas coordinates (pos="x,y!") and sized from
// their behavior, so the diagram matches the model rather than a computed
// layout. Rect nodes become boxes, circle nodes circles and text nodes
// plain labels; unknown model types fall back to boxes. Resolved styles
// (fill, stroke, strokeWidth, text color) map onto Graphviz attributes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
