package puzzle

import "github.com/matzehuels/jigsaw/pkg/geom"

// DocumentVersion is the current version of the serialized document.
const DocumentVersion = 1

// Document is the complete, serializable result of one generation run.
// Sinks render it and package io reads and writes it.
type Document struct {
	Version int        `json:"version"`
	Origin  geom.Point `json:"origin"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Rows    int        `json:"rows"`
	Cols    int        `json:"cols"`
	Mode    Mode       `json:"mode"`
	Seed    uint64     `json:"seed"`

	OffsetDistance  float64 `json:"offset_distance,omitempty"`
	ScatterStrength float64 `json:"scatter_strength,omitempty"`

	Edges    []EdgeRecord  `json:"edges,omitempty"`
	Pieces   []PieceRecord `json:"pieces"`
	Warnings []Warning     `json:"warnings,omitempty"`
}

// EdgeRecord describes one interior edge: which cell owns it and whether
// the tab bulges out of the owner (TabSign +1) or into it (-1).
type EdgeRecord struct {
	Axis        string  `json:"axis"`
	Owner       Cell    `json:"owner"`
	Other       Cell    `json:"other"`
	TabSign     int     `json:"tab_sign"`
	DepthJitter float64 `json:"depth_jitter"`
	ShiftJitter float64 `json:"shift_jitter,omitempty"`
}

// TabCell returns the cell carrying the tab.
func (e EdgeRecord) TabCell() Cell {
	if e.TabSign < 0 {
		return e.Other
	}
	return e.Owner
}

// NotchCell returns the cell carrying the notch.
func (e EdgeRecord) NotchCell() Cell {
	if e.TabSign < 0 {
		return e.Owner
	}
	return e.Other
}

// Board reconstructs the board the document was generated for.
func (d Document) Board() Board {
	return Board{Origin: d.Origin, Width: d.Width, Height: d.Height, Rows: d.Rows, Cols: d.Cols, Mode: d.Mode}
}

// NewDocument starts a document for b.
func NewDocument(b Board, seed uint64) Document {
	return Document{
		Version: DocumentVersion,
		Origin:  b.Origin,
		Width:   b.Width,
		Height:  b.Height,
		Rows:    b.Rows,
		Cols:    b.Cols,
		Mode:    b.Mode,
		Seed:    seed,
	}
}

// Piece returns the record for cell (r, c), if present.
func (d Document) Piece(r, c int) (PieceRecord, bool) {
	if i := r*d.Cols + c; r >= 0 && c >= 0 && c < d.Cols && i < len(d.Pieces) && d.Pieces[i].Row == r && d.Pieces[i].Col == c {
		return d.Pieces[i], true
	}
	for _, p := range d.Pieces {
		if p.Row == r && p.Col == c {
			return p, true
		}
	}
	return PieceRecord{}, false
}

// Bounds returns the box containing every piece, its offset outline and
// its placement delta. An empty document yields the board rectangle.
func (d Document) Bounds() geom.Rect {
	r := geom.Rect{Min: d.Origin, Max: d.Origin.Add(geom.Pt(d.Width, d.Height))}
	for _, p := range d.Pieces {
		var delta geom.Point
		if p.PlacementDelta != nil {
			delta = geom.Pt(p.PlacementDelta.DX, p.PlacementDelta.DY)
		}
		r = union(r, p.Boundary.Translate(delta).Bounds())
		if p.OffsetBoundary != nil {
			r = union(r, p.OffsetBoundary.Translate(delta).Bounds())
		}
	}
	return r
}

func union(r, o geom.Rect) geom.Rect {
	return geom.Rect{
		Min: geom.Pt(min(r.Min.X, o.Min.X), min(r.Min.Y, o.Min.Y)),
		Max: geom.Pt(max(r.Max.X, o.Max.X), max(r.Max.Y, o.Max.Y)),
	}
}
