// Package render provides output format conversion for rendered graphs.
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// The [nodelink] subpackage turns a graph into Graphviz DOT with pinned
// node positions and renders it to SVG in-process.
//
// [nodelink]: github.com/matzehuels/flowmodel/pkg/render/nodelink
package render
