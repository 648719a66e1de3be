package puzzle

import (
	"fmt"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/geom"
)

// Delta is a translation applied when a piece is placed.
type Delta struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// PieceRecord is the emitted result for one cell.
type PieceRecord struct {
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	Boundary geom.Path `json:"boundary"`

	// OffsetBoundary is nil when no offset was requested or the offset
	// failed for this piece.
	OffsetBoundary *geom.Path `json:"offset_boundary"`

	// PlacementDelta is nil when scatter is disabled.
	PlacementDelta *Delta `json:"placement_delta"`
}

// Cell returns the record's board position.
func (p PieceRecord) Cell() Cell { return Cell{Row: p.Row, Col: p.Col} }

// Warning is a recoverable, per-piece problem reported alongside the
// records.
type Warning struct {
	Row     int         `json:"row"`
	Col     int         `json:"col"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// NewWarning builds a warning for cell from err, keeping its code when it
// is a structured error.
func NewWarning(cell Cell, err error) Warning {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return Warning{Row: cell.Row, Col: cell.Col, Code: code, Message: errors.UserMessage(err)}
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (piece %d,%d): %s", w.Code, w.Row, w.Col, w.Message)
}
