// Package sink renders a generated puzzle document to output formats.
//
// [RenderSVG] draws every piece outline as an SVG path using cubic bezier
// segments, with optional dashed offset outlines and scatter translations.
// [RenderJSON] serializes the full document. [ToDOT] describes the interlock
// graph (which piece's tab enters which neighbour) in Graphviz DOT, and
// [RenderDOTSVG] lays it out with Graphviz.
package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	stroke      string
	strokeWidth float64
	offsetColor string
	margin      float64
	labels      bool
	noOffsets   bool
	noScatter   bool
}

// WithStroke sets the outline color (default "#222222").
func WithStroke(color string) SVGOption { return func(r *svgRenderer) { r.stroke = color } }

// WithStrokeWidth sets the outline width in board units (default 1).
func WithStrokeWidth(w float64) SVGOption { return func(r *svgRenderer) { r.strokeWidth = w } }

// WithMargin sets the space kept around the drawing (default 10).
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }

// WithLabels writes each piece's row and column at its center.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithoutOffsets leaves out the offset outlines.
func WithoutOffsets() SVGOption { return func(r *svgRenderer) { r.noOffsets = true } }

// WithoutScatter draws pieces in their grid positions even when the
// document carries placement deltas.
func WithoutScatter() SVGOption { return func(r *svgRenderer) { r.noScatter = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		stroke:      "#222222",
		strokeWidth: 1,
		offsetColor: "#d33f49",
		margin:      10,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws doc as a standalone SVG document.
func RenderSVG(doc puzzle.Document, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	view := r.viewBox(doc)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		geom.FormatNum(view.Min.X), geom.FormatNum(view.Min.Y),
		geom.FormatNum(view.Width()), geom.FormatNum(view.Height()),
		view.Width(), view.Height())
	fmt.Fprintf(&buf, `  <g class="pieces" fill="none" stroke="%s" stroke-width="%s" stroke-linejoin="round">`+"\n",
		r.stroke, geom.FormatNum(r.strokeWidth))

	for _, p := range doc.Pieces {
		r.renderPiece(&buf, p)
	}

	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderPiece(buf *bytes.Buffer, p puzzle.PieceRecord) {
	transform := ""
	if p.PlacementDelta != nil && !r.noScatter {
		transform = fmt.Sprintf(` transform="translate(%s %s)"`,
			geom.FormatNum(p.PlacementDelta.DX), geom.FormatNum(p.PlacementDelta.DY))
	}
	fmt.Fprintf(buf, `    <g id="piece-%d-%d" data-row="%d" data-col="%d"%s>`+"\n", p.Row, p.Col, p.Row, p.Col, transform)
	fmt.Fprintf(buf, `      <path class="piece" d="%s"/>`+"\n", p.Boundary.SVGData())
	if p.OffsetBoundary != nil && !r.noOffsets {
		fmt.Fprintf(buf, `      <path class="offset" d="%s" stroke="%s" stroke-dasharray="4 2"/>`+"\n",
			p.OffsetBoundary.SVGData(), r.offsetColor)
	}
	if r.labels {
		c := center(p.Boundary)
		fmt.Fprintf(buf, `      <text x="%s" y="%s" font-size="10" text-anchor="middle" dominant-baseline="middle" fill="%s" stroke="none">%d,%d</text>`+"\n",
			geom.FormatNum(c.X), geom.FormatNum(c.Y), r.stroke, p.Row, p.Col)
	}
	buf.WriteString("    </g>\n")
}

func (r svgRenderer) viewBox(doc puzzle.Document) geom.Rect {
	if r.noScatter || r.noOffsets {
		trimmed := doc
		trimmed.Pieces = make([]puzzle.PieceRecord, len(doc.Pieces))
		for i, p := range doc.Pieces {
			if r.noScatter {
				p.PlacementDelta = nil
			}
			if r.noOffsets {
				p.OffsetBoundary = nil
			}
			trimmed.Pieces[i] = p
		}
		doc = trimmed
	}
	return doc.Bounds().Outset(r.margin + r.strokeWidth)
}

// center is the middle of the outline's bounding box.
func center(p geom.Path) geom.Point {
	b := p.Bounds()
	return b.Min.Lerp(b.Max, 0.5)
}
