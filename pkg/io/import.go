package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// closeEps is the tolerance for a boundary's last anchor to meet its first.
const closeEps = 1e-6

// ReadJSON decodes a puzzle document from r and validates it.
//
// ReadJSON returns an INVALID_FORMAT error if the JSON is malformed, the
// version is newer than this package understands, the board is not
// well-formed, or a piece is outside the board, repeated or not closed.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (puzzle.Document, error) {
	var doc puzzle.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return puzzle.Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	if err := validate(&doc); err != nil {
		return puzzle.Document{}, err
	}
	return doc, nil
}

// ImportJSON reads a JSON document file at path.
func ImportJSON(path string) (puzzle.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return puzzle.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func validate(doc *puzzle.Document) error {
	if doc.Version < 0 || doc.Version > puzzle.DocumentVersion {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported document version %d", doc.Version)
	}
	if doc.Version == 0 {
		doc.Version = puzzle.DocumentVersion
	}
	for _, dim := range []struct {
		name string
		v    float64
	}{{"width", doc.Width}, {"height", doc.Height}} {
		if err := errors.ValidateDimension(dim.name, dim.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid board")
		}
	}
	if doc.Rows < 1 || doc.Cols < 1 {
		return errors.New(errors.ErrCodeInvalidFormat, "board must have at least one row and column, got %d×%d", doc.Rows, doc.Cols)
	}
	mode, err := puzzle.ParseMode(string(doc.Mode))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid board")
	}
	doc.Mode = mode

	b := doc.Board()
	seen := make(map[puzzle.Cell]bool, len(doc.Pieces))
	for _, p := range doc.Pieces {
		cell := p.Cell()
		switch {
		case !b.Contains(p.Row, p.Col):
			return errors.New(errors.ErrCodeInvalidFormat, "piece (%d,%d) outside a %d×%d board", p.Row, p.Col, b.Rows, b.Cols)
		case seen[cell]:
			return errors.AtCell(errors.New(errors.ErrCodeInvalidFormat, "duplicate piece"), p.Row, p.Col)
		case !p.Boundary.IsClosed(closeEps):
			return errors.AtCell(errors.New(errors.ErrCodeInvalidFormat, "boundary is not closed"), p.Row, p.Col)
		case p.OffsetBoundary != nil && !p.OffsetBoundary.IsClosed(closeEps):
			return errors.AtCell(errors.New(errors.ErrCodeInvalidFormat, "offset boundary is not closed"), p.Row, p.Col)
		}
		seen[cell] = true
	}
	for _, e := range doc.Edges {
		if !b.Contains(e.Owner.Row, e.Owner.Col) || !b.Contains(e.Other.Row, e.Other.Col) {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %v-%v outside the board", e.Owner, e.Other)
		}
		if e.TabSign != 1 && e.TabSign != -1 {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %v-%v has tab sign %d", e.Owner, e.Other, e.TabSign)
		}
	}
	return nil
}
