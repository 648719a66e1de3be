package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// WriteJSON encodes doc as indented JSON and writes it to w.
// The output can be re-read with [ReadJSON].
func WriteJSON(doc puzzle.Document, w io.Writer) error {
	if doc.Version == 0 {
		doc.Version = puzzle.DocumentVersion
	}
	if doc.Pieces == nil {
		doc.Pieces = []puzzle.PieceRecord{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes doc to a JSON file at path.
func ExportJSON(doc puzzle.Document, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
