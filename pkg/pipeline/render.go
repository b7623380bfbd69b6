package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/flowmodel/pkg/io"
	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats without caching.
func Render(ctx context.Context, g *model.Graph, opts Options) (map[string][]byte, error) {
	return RenderDOT(ctx, nodelink.ToDOT(g, opts.NodelinkOptions()), g, opts.Formats, opts)
}

// RenderDOT renders already generated DOT source. g is only consulted for
// the JSON format.
func RenderDOT(ctx context.Context, dot string, g *model.Graph, formats []string, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))

	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = io.WriteJSON(g, &buf)
			data = buf.Bytes()
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
