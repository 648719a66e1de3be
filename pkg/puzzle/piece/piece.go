// Package piece composes the closed outline of one board cell.
//
// A cell's outline is built by walking its sides clockwise on screen (top
// left to right, right top to bottom, bottom right to left, left bottom to
// top) and joining the nodes of each side corner to corner. Perimeter sides
// are straight. Interior sides resolve the shared slot from package edge:
// the owning cell builds the tab curve in its own walking direction, and the
// other cell reverses that very curve, so both outlines agree along the
// shared edge to the last bit.
package piece

import (
	"fmt"
	"strings"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/puzzle/edge"
	"github.com/matzehuels/jigsaw/pkg/puzzle/tab"
)

// Side names one of the four sides of a cell, in walking order.
type Side uint8

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Sides lists the sides in walking order.
var Sides = [4]Side{Top, Right, Bottom, Left}

func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	}
	return fmt.Sprintf("side(%d)", uint8(s))
}

// EdgeRef tells whether a side lies on the board's perimeter or on an
// interior edge, and which one.
type EdgeRef struct {
	Side     Side
	Interior bool
	Key      edge.Key
}

// Piece is a cell together with its four edge references.
type Piece struct {
	Cell  puzzle.Cell
	Edges [4]EdgeRef
}

// Describe returns the piece at (r, c) of b.
func Describe(b puzzle.Board, r, c int) Piece {
	return Piece{
		Cell: puzzle.Cell{Row: r, Col: c},
		Edges: [4]EdgeRef{
			{Side: Top, Interior: r > 0, Key: edge.Above(r, c)},
			{Side: Right, Interior: c < b.Cols-1, Key: edge.Right(r, c)},
			{Side: Bottom, Interior: r < b.Rows-1, Key: edge.Below(r, c)},
			{Side: Left, Interior: c > 0, Key: edge.Left(r, c)},
		},
	}
}

// Policy decides what happens when a tab would self-intersect.
type Policy uint8

const (
	// DegenerateFail aborts with DEGENERATE_EDGE.
	DegenerateFail Policy = iota
	// DegenerateWarn draws the edge straight and reports a warning.
	DegenerateWarn
)

func (p Policy) String() string {
	if p == DegenerateWarn {
		return "warn"
	}
	return "fail"
}

// ParsePolicy accepts "fail" or "warn"; the empty string means fail.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return DegenerateFail, nil
	case "warn":
		return DegenerateWarn, nil
	}
	return DegenerateFail, errors.New(errors.ErrCodeInvalidInput, "invalid degenerate policy: %q (must be fail or warn)", s)
}

// Builder produces piece outlines for one board. It only reads Slots, so a
// single Builder may be shared by concurrent callers.
type Builder struct {
	Board  puzzle.Board
	Slots  *edge.Slots
	Policy Policy
}

// Build returns the closed outline of cell (r, c). The returned path is a
// fresh allocation. Warnings are only produced under DegenerateWarn.
func (bd *Builder) Build(r, c int) (geom.Path, []puzzle.Warning, error) {
	if !bd.Board.Contains(r, c) {
		return geom.Path{}, nil, errors.New(errors.ErrCodeInvalidInput, "cell (%d,%d) is outside the %d×%d board", r, c, bd.Board.Rows, bd.Board.Cols)
	}
	var (
		nodes    []geom.Node
		warnings []puzzle.Warning
	)
	for _, s := range Sides {
		side, warn, err := bd.Side(r, c, s)
		if err != nil {
			return geom.Path{}, nil, err
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		nodes = geom.Join(nodes, side, geom.Epsilon)
	}
	return geom.ClosePath(nodes), warnings, nil
}

// Side returns the nodes of one side of cell (r, c) in walking order, from
// its first corner to its last.
func (bd *Builder) Side(r, c int, s Side) ([]geom.Node, *puzzle.Warning, error) {
	b := bd.Board
	start, end := sideCorners(b, r, c, s)
	ref := Describe(b, r, c).Edges[s]

	var slot *edge.Slot
	if ref.Interior && bd.Slots != nil {
		slot, _ = bd.Slots.Lookup(ref.Key)
	}
	if slot == nil {
		return tab.BuildEdge(start, end, nil, 0, 0), nil, nil
	}

	length, perp := b.PieceWidth(), b.PieceHeight()
	if s == Left || s == Right {
		length, perp = perp, length
	}
	cell := puzzle.Cell{Row: r, Col: c}
	if tab.Degenerate(length, perp) {
		err := errors.AtCell(errors.New(errors.ErrCodeDegenerateEdge,
			"%s edge: tab depth %g exceeds %g× the edge length %g",
			s, tab.Depth(perp), tab.MaxDepthRatio, length), r, c)
		if bd.Policy != DegenerateWarn {
			return nil, nil, err
		}
		w := puzzle.NewWarning(cell, err)
		return tab.BuildEdge(start, end, nil, 0, 0), &w, nil
	}

	owner := edge.OwnerOf(ref.Key)
	sign := bd.Slots.SignFor(owner, ref.Key)
	if owner == cell {
		return tab.BuildEdge(start, end, slot, sign, perp), nil, nil
	}
	return geom.Reverse(tab.BuildEdge(end, start, slot, sign, perp)), nil, nil
}

// sideCorners returns the walking start and end of side s of cell (r, c).
func sideCorners(b puzzle.Board, r, c int, s Side) (geom.Point, geom.Point) {
	switch s {
	case Top:
		return b.Corner(r, c), b.Corner(r, c+1)
	case Right:
		return b.Corner(r, c+1), b.Corner(r+1, c+1)
	case Bottom:
		return b.Corner(r+1, c+1), b.Corner(r+1, c)
	default:
		return b.Corner(r+1, c), b.Corner(r, c)
	}
}
