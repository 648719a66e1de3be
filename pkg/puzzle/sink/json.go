package sink

import (
	"encoding/json"

	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent     bool
	skipEdges  bool
	skipOffset bool
}

// WithIndent pretty-prints the output.
func WithIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithoutEdges drops the interior edge table from the output.
func WithoutEdges() JSONOption { return func(r *jsonRenderer) { r.skipEdges = true } }

// WithoutOffsetBoundaries drops offset outlines from the output.
func WithoutOffsetBoundaries() JSONOption { return func(r *jsonRenderer) { r.skipOffset = true } }

// RenderJSON serializes doc. The output can be read back with package io.
func RenderJSON(doc puzzle.Document, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	if r.skipEdges {
		doc.Edges = nil
	}
	if r.skipOffset {
		pieces := make([]puzzle.PieceRecord, len(doc.Pieces))
		for i, p := range doc.Pieces {
			p.OffsetBoundary = nil
			pieces[i] = p
		}
		doc.Pieces = pieces
	}
	if doc.Pieces == nil {
		doc.Pieces = []puzzle.PieceRecord{}
	}

	if r.indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}
