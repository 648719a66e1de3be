package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// DOTOption configures interlock graph output via [ToDOT].
type DOTOption func(*dotRenderer)

type dotRenderer struct {
	jitter bool
}

// WithJitterLabels labels every edge with its depth jitter.
func WithJitterLabels() DOTOption { return func(r *dotRenderer) { r.jitter = true } }

// ToDOT describes the interlock graph of doc: one node per piece and one
// arrow per interior edge, pointing from the piece carrying the tab to the
// piece carrying the notch. Rows are kept on the same rank.
func ToDOT(doc puzzle.Document, opts ...DOTOption) string {
	var r dotRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph interlock {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for row := 0; row < doc.Rows; row++ {
		buf.WriteString("  { rank=same;")
		for col := 0; col < doc.Cols; col++ {
			fmt.Fprintf(&buf, " %q;", nodeID(puzzle.Cell{Row: row, Col: col}))
		}
		buf.WriteString(" }\n")
	}
	buf.WriteString("\n")

	for _, e := range doc.Edges {
		attrs := fmt.Sprintf("color=%q", axisColor(e.Axis))
		if r.jitter {
			attrs += fmt.Sprintf(", label=%q", strconv.FormatFloat(e.DepthJitter, 'f', 2, 64))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", nodeID(e.TabCell()), nodeID(e.NotchCell()), attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(c puzzle.Cell) string { return fmt.Sprintf("%d,%d", c.Row, c.Col) }

func axisColor(axis string) string {
	if axis == "vertical" {
		return "#3b6ea8"
	}
	return "#d33f49"
}

// RenderDOTSVG lays out a DOT graph with Graphviz and returns SVG bytes.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

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

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
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
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
