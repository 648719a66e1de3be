package puzzle

import (
	"math"
	"strings"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/geom"
)

// Mode selects how interior edges are shaped.
type Mode string

const (
	ModeGrid        Mode = "grid"
	ModeTraditional Mode = "traditional"
	ModeRandom      Mode = "random"
)

// DefaultMode is used when a config leaves the mode empty.
const DefaultMode = ModeTraditional

// DefaultMaxPieces bounds R·C unless a config sets its own limit.
const DefaultMaxPieces = 10000

// Modes lists the supported modes in display order.
var Modes = []Mode{ModeGrid, ModeTraditional, ModeRandom}

// ParseMode parses a mode name case-insensitively. The empty string yields
// DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return DefaultMode, nil
	case ModeGrid, ModeTraditional, ModeRandom:
		return m, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidMode, "invalid mode: %q (must be one of: grid, traditional, random)", s)
	}
}

// Curved reports whether the mode draws tabs.
func (m Mode) Curved() bool { return m == ModeTraditional || m == ModeRandom }

// Cell addresses one piece on the board.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Config is the user's sizing intent. Zero Rows or Cols means "infer".
type Config struct {
	OriginX      float64
	OriginY      float64
	Width        float64
	Height       float64
	Rows         int
	Cols         int
	TargetPieces int
	Mode         Mode

	// MaxPieces rejects boards with more than this many cells.
	// Zero uses DefaultMaxPieces.
	MaxPieces int
}

// Board is a resolved, immutable grid.
type Board struct {
	Origin geom.Point
	Width  float64
	Height float64
	Rows   int
	Cols   int
	Mode   Mode
}

// PieceWidth is the horizontal extent of one cell.
func (b Board) PieceWidth() float64 { return b.Width / float64(b.Cols) }

// PieceHeight is the vertical extent of one cell.
func (b Board) PieceHeight() float64 { return b.Height / float64(b.Rows) }

// Count returns the number of pieces on the board.
func (b Board) Count() int { return b.Rows * b.Cols }

// Corner returns the grid point at row r and column c, where 0 ≤ r ≤ Rows
// and 0 ≤ c ≤ Cols. Neighbouring cells share corners bit for bit because
// every caller goes through this function.
func (b Board) Corner(r, c int) geom.Point {
	return geom.Point{
		X: b.Origin.X + float64(c)*b.PieceWidth(),
		Y: b.Origin.Y + float64(r)*b.PieceHeight(),
	}
}

// CellRect returns the axis-aligned rectangle of cell (r, c).
func (b Board) CellRect(r, c int) geom.Rect {
	return geom.Rect{Min: b.Corner(r, c), Max: b.Corner(r+1, c+1)}
}

// Contains reports whether (r, c) is on the board.
func (b Board) Contains(r, c int) bool {
	return r >= 0 && r < b.Rows && c >= 0 && c < b.Cols
}

// Cells returns every cell in row-major order.
func (b Board) Cells() []Cell {
	cells := make([]Cell, 0, b.Count())
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			cells = append(cells, Cell{Row: r, Col: c})
		}
	}
	return cells
}

// Resolve validates cfg and computes the final row and column counts.
//
// With only rows given, cols = round(aspect·rows); with only cols given,
// rows = round(cols/aspect); with neither, both come from TargetPieces as
// cols = round(sqrt(T·aspect)) and rows = round(T/cols). Results are
// clamped to at least 1.
func Resolve(cfg Config) (Board, error) {
	if err := errors.ValidateDimension("width", cfg.Width); err != nil {
		return Board{}, err
	}
	if err := errors.ValidateDimension("height", cfg.Height); err != nil {
		return Board{}, err
	}
	if err := validateOrigin(cfg.OriginX, cfg.OriginY); err != nil {
		return Board{}, err
	}
	for _, f := range []struct {
		name string
		n    int
	}{{"rows", cfg.Rows}, {"cols", cfg.Cols}, {"target_pieces", cfg.TargetPieces}} {
		if err := errors.ValidateCount(f.name, f.n); err != nil {
			return Board{}, err
		}
	}

	mode := cfg.Mode
	if mode == "" {
		mode = DefaultMode
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return Board{}, err
	}

	aspect := math.Abs(cfg.Width / cfg.Height)
	rows, cols := cfg.Rows, cfg.Cols
	switch {
	case rows > 0 && cols > 0:
	case rows > 0:
		cols = roundCount(aspect * float64(rows))
	case cols > 0:
		rows = roundCount(float64(cols) / aspect)
	case cfg.TargetPieces > 0:
		t := float64(cfg.TargetPieces)
		cols = roundCount(math.Sqrt(t * aspect))
		rows = roundCount(t / float64(cols))
	default:
		return Board{}, errors.New(errors.ErrCodeInvalidGeometry, "rows, cols or target_pieces must be set")
	}

	limit := cfg.MaxPieces
	if limit <= 0 {
		limit = DefaultMaxPieces
	}
	if rows > limit || cols > limit || rows*cols > limit {
		return Board{}, errors.New(errors.ErrCodeInvalidGeometry, "%d×%d board exceeds the limit of %d pieces", rows, cols, limit)
	}

	return Board{
		Origin: geom.Pt(cfg.OriginX, cfg.OriginY),
		Width:  cfg.Width,
		Height: cfg.Height,
		Rows:   rows,
		Cols:   cols,
		Mode:   mode,
	}, nil
}

func validateOrigin(x, y float64) error {
	if err := errors.ValidateFinite("origin_x", x); err != nil {
		return err
	}
	return errors.ValidateFinite("origin_y", y)
}

// roundCount rounds half away from zero and clamps to 1. Values too large
// for an int saturate so the piece limit rejects them.
func roundCount(v float64) int {
	r := math.Round(v)
	if r < 1 {
		return 1
	}
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(r)
}
