// Package edge pre-computes the shared parameters of every interior edge.
//
// An interior edge sits between two neighbouring cells. Its [Slot] decides
// which of the two cells carries the tab and how the tab's body is jittered.
// All slots are created by [Generate] in a single row-major pass before any
// piece is built; afterwards the arena is read-only and both cells resolve
// the very same *Slot through [Slots.Lookup].
//
// # Ownership
//
// Every interior edge has an owner, given by [OwnerOf]: the cell above a
// horizontal edge, or the cell left of a vertical edge. A slot's TabSign is
// expressed from the owner's point of view: +1 means the tab bulges out of
// the owner (down across a horizontal edge, right across a vertical one).
// [Slots.SignFor] converts it for either neighbour.
package edge

import (
	"math/rand/v2"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// Axis tells horizontal edges from vertical ones.
type Axis uint8

const (
	// Horizontal edges run left to right between rows.
	Horizontal Axis = iota
	// Vertical edges run top to bottom between columns.
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Key identifies one interior edge by a cell it touches.
//
// For Horizontal, (Row, Col) is the cell below the edge, so Row ≥ 1.
// For Vertical, (Row, Col) is the cell left of the edge, so Col ≤ Cols-2.
type Key struct {
	Axis Axis
	Row  int
	Col  int
}

// Above returns the key of the horizontal edge above cell (r, c).
func Above(r, c int) Key { return Key{Axis: Horizontal, Row: r, Col: c} }

// Below returns the key of the horizontal edge below cell (r, c).
func Below(r, c int) Key { return Key{Axis: Horizontal, Row: r + 1, Col: c} }

// Right returns the key of the vertical edge right of cell (r, c).
func Right(r, c int) Key { return Key{Axis: Vertical, Row: r, Col: c} }

// Left returns the key of the vertical edge left of cell (r, c).
func Left(r, c int) Key { return Key{Axis: Vertical, Row: r, Col: c - 1} }

// Slot holds the shared tab parameters of one interior edge.
type Slot struct {
	// TabSign is +1 when the tab bulges out of the owner cell, -1 when the
	// owner carries the notch.
	TabSign int

	// DepthJitter translates the tab body perpendicular to the edge, in
	// board units, away from the owner.
	DepthJitter float64

	// ShiftJitter translates the tab body along the edge, as a fraction of
	// the edge length.
	ShiftJitter float64
}

// Options tune the random draws.
type Options struct {
	// DepthJitter is the half-range of Slot.DepthJitter as a fraction of
	// the piece dimension perpendicular to the edge.
	DepthJitter float64

	// ShiftJitter is the half-range of Slot.ShiftJitter as a fraction of
	// the edge length.
	ShiftJitter float64
}

// Default jitter ranges.
const (
	DefaultDepthJitter = 0.05
	DefaultShiftJitter = 0.0
)

// DefaultOptions returns the default jitter ranges.
func DefaultOptions() Options {
	return Options{DepthJitter: DefaultDepthJitter, ShiftJitter: DefaultShiftJitter}
}

// Upper bounds for Options. Generate clamps larger values, taking the shift
// range out of what the depth range leaves of JitterBudget.
//
// A tab plateau reaches 1/4 of the piece plus the depth jitter into the
// neighbour, and a shifted tab body starts at 1/3 minus the shift jitter
// along the edge. Keeping their sum at or below JitterBudget leaves the
// tabs of two perpendicular edges of the same cell apart.
const (
	MaxDepthJitter = 0.075
	MaxShiftJitter = 0.075
	JitterBudget   = 0.075
)

// Validate checks the ranges against the bounds above.
func (o Options) Validate() error {
	if !(o.DepthJitter >= 0 && o.DepthJitter <= MaxDepthJitter) {
		return errors.New(errors.ErrCodeInvalidInput, "depth_jitter must be in [0, %g], got %g", MaxDepthJitter, o.DepthJitter)
	}
	if !(o.ShiftJitter >= 0 && o.ShiftJitter <= MaxShiftJitter) {
		return errors.New(errors.ErrCodeInvalidInput, "shift_jitter must be in [0, %g], got %g", MaxShiftJitter, o.ShiftJitter)
	}
	if o.DepthJitter+o.ShiftJitter > JitterBudget {
		return errors.New(errors.ErrCodeInvalidInput, "depth_jitter + shift_jitter must not exceed %g", JitterBudget)
	}
	return nil
}

// Slots is the immutable arena of interior edge slots for one board.
type Slots struct {
	rows, cols int
	horizontal []Slot // (rows-1)*cols, index (r-1)*cols + c
	vertical   []Slot // rows*(cols-1), index r*(cols-1) + c
}

// Generate creates every interior slot of b in one row-major pass. For each
// cell it fills the edge above, then the edge to the right. Random values
// are drawn from rng in the order sign (random mode only), depth, shift.
//
// Grid boards have no slots.
func Generate(b puzzle.Board, rng *rand.Rand, opts Options) *Slots {
	s := &Slots{rows: b.Rows, cols: b.Cols}
	if !b.Mode.Curved() {
		return s
	}
	s.horizontal = make([]Slot, (b.Rows-1)*b.Cols)
	s.vertical = make([]Slot, b.Rows*(b.Cols-1))

	depth := clampRange(opts.DepthJitter, 0, MaxDepthJitter)
	shift := clampRange(opts.ShiftJitter, 0, min(MaxShiftJitter, JitterBudget-depth))

	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if r > 0 {
				s.horizontal[(r-1)*b.Cols+c] = draw(b.Mode, Above(r, c), rng, depth*b.PieceHeight(), shift)
			}
			if c < b.Cols-1 {
				s.vertical[r*(b.Cols-1)+c] = draw(b.Mode, Right(r, c), rng, depth*b.PieceWidth(), shift)
			}
		}
	}
	return s
}

func draw(mode puzzle.Mode, k Key, rng *rand.Rand, depthRange, shiftRange float64) Slot {
	var sign int
	if mode == puzzle.ModeRandom {
		sign = 1
		if rng.IntN(2) == 0 {
			sign = -1
		}
	} else {
		sign = TraditionalSign(k)
	}
	return Slot{
		TabSign:     sign,
		DepthJitter: uniform(rng, depthRange),
		ShiftJitter: uniform(rng, shiftRange),
	}
}

// TraditionalSign returns the checkerboard tab sign of k. For the edge above
// cell (r, c) it is parity(r) XOR parity(c) mapped to {1→+1, 0→-1}; the edge
// right of (r, c) takes the negation.
func TraditionalSign(k Key) int {
	sign := -1
	if (k.Row&1)^(k.Col&1) == 1 {
		sign = 1
	}
	if k.Axis == Vertical {
		sign = -sign
	}
	return sign
}

// uniform draws from [-h, h). A zero range consumes no randomness.
func uniform(rng *rand.Rand, h float64) float64 {
	if h == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * h
}

func clampRange(v, lo, hi float64) float64 {
	if !(v > lo) {
		return lo
	}
	return min(v, hi)
}

// Valid reports whether k names an interior edge of the arena's board.
func (s *Slots) Valid(k Key) bool {
	switch k.Axis {
	case Horizontal:
		return k.Row >= 1 && k.Row < s.rows && k.Col >= 0 && k.Col < s.cols
	case Vertical:
		return k.Row >= 0 && k.Row < s.rows && k.Col >= 0 && k.Col < s.cols-1
	}
	return false
}

// Lookup returns the slot for k. The pointer refers into the arena, so both
// cells sharing the edge receive the same instance; callers must not modify
// it. Lookup reports false for perimeter keys and on grid boards.
func (s *Slots) Lookup(k Key) (*Slot, bool) {
	if !s.Valid(k) {
		return nil, false
	}
	switch k.Axis {
	case Horizontal:
		if len(s.horizontal) == 0 {
			return nil, false
		}
		return &s.horizontal[(k.Row-1)*s.cols+k.Col], true
	default:
		if len(s.vertical) == 0 {
			return nil, false
		}
		return &s.vertical[k.Row*(s.cols-1)+k.Col], true
	}
}

// Len returns the number of slots in the arena.
func (s *Slots) Len() int { return len(s.horizontal) + len(s.vertical) }

// Keys returns every interior key in generation order.
func (s *Slots) Keys() []Key {
	if s.Len() == 0 {
		return nil
	}
	keys := make([]Key, 0, s.Len())
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			if r > 0 {
				keys = append(keys, Above(r, c))
			}
			if c < s.cols-1 {
				keys = append(keys, Right(r, c))
			}
		}
	}
	return keys
}

// OwnerOf returns the cell that owns k: the cell above a horizontal edge or
// the cell left of a vertical edge.
func OwnerOf(k Key) puzzle.Cell {
	if k.Axis == Horizontal {
		return puzzle.Cell{Row: k.Row - 1, Col: k.Col}
	}
	return puzzle.Cell{Row: k.Row, Col: k.Col}
}

// OtherOf returns the non-owning cell of k.
func OtherOf(k Key) puzzle.Cell {
	if k.Axis == Horizontal {
		return puzzle.Cell{Row: k.Row, Col: k.Col}
	}
	return puzzle.Cell{Row: k.Row, Col: k.Col + 1}
}

// SignFor returns +1 when the tab of k bulges out of cell and -1 when cell
// carries the notch. It returns 0 for perimeter keys and for cells that do
// not touch k.
func (s *Slots) SignFor(cell puzzle.Cell, k Key) int {
	slot, ok := s.Lookup(k)
	if !ok {
		return 0
	}
	switch cell {
	case OwnerOf(k):
		return slot.TabSign
	case OtherOf(k):
		return -slot.TabSign
	}
	return 0
}

