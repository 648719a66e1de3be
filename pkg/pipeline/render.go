package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/jigsaw/pkg/observability"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/puzzle/sink"
)

// RenderOptions selects the artifacts to produce.
type RenderOptions struct {
	Formats []string
	Labels  bool // print row,col on every SVG piece
}

// Render generates output artifacts for doc in the requested formats.
func Render(ctx context.Context, doc puzzle.Document, opts RenderOptions) (map[string][]byte, error) {
	formats := opts.Formats
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(formats))
	var err error
	for _, format := range formats {
		var data []byte
		data, err = renderFormat(ctx, doc, format, opts.Labels)
		if err != nil {
			err = fmt.Errorf("render %s: %w", format, err)
			break
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, doc puzzle.Document, format string, labels bool) ([]byte, error) {
	switch format {
	case FormatSVG:
		var svgOpts []sink.SVGOption
		if labels {
			svgOpts = append(svgOpts, sink.WithLabels())
		}
		return sink.RenderSVG(doc, svgOpts...), nil
	case FormatJSON:
		return sink.RenderJSON(doc, sink.WithIndent())
	case FormatDOT:
		return []byte(sink.ToDOT(doc)), nil
	case FormatInterlock:
		return sink.RenderDOTSVG(ctx, sink.ToDOT(doc, sink.WithJitterLabels()))
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
