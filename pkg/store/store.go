// Package store persists generation runs so they can be listed and
// re-rendered later.
//
// Two backends implement [Store]: [SQLiteStore] for a single machine (the
// CLI default) and [MongoStore] for the API server. Both keep the full
// puzzle document as JSON next to a few columns used for listing.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	docio "github.com/matzehuels/jigsaw/pkg/io"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/puzzle/sink"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Record is one stored run.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Seed      uint64    `json:"seed"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Mode      string    `json:"mode"`
	Pieces    int       `json:"pieces"`
	Warnings  int       `json:"warnings"`

	// Options are the request options as JSON.
	Options json.RawMessage `json:"options,omitempty"`

	// Document is the generated document as JSON. List leaves it empty.
	Document json.RawMessage `json:"document,omitempty"`
}

// Store persists runs.
type Store interface {
	// Save inserts rec, assigning ID and CreatedAt when they are unset.
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (Record, error)
	// List returns the newest runs first, without their documents.
	List(ctx context.Context, limit int) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewRecord builds a record for doc generated with opts.
func NewRecord(doc puzzle.Document, opts any) (*Record, error) {
	data, err := sink.RenderJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var rawOpts json.RawMessage
	if opts != nil {
		if rawOpts, err = json.Marshal(opts); err != nil {
			return nil, fmt.Errorf("encode options: %w", err)
		}
	}
	return &Record{
		Seed:     doc.Seed,
		Rows:     doc.Rows,
		Cols:     doc.Cols,
		Mode:     string(doc.Mode),
		Pieces:   len(doc.Pieces),
		Warnings: len(doc.Warnings),
		Options:  rawOpts,
		Document: data,
	}, nil
}

// Decode parses the stored document.
func (r Record) Decode() (puzzle.Document, error) {
	if len(r.Document) == 0 {
		return puzzle.Document{}, fmt.Errorf("run %s has no document loaded", r.ID)
	}
	return docio.ReadJSON(bytes.NewReader(r.Document))
}

// prepare fills the ID and creation time of a record about to be saved.
func prepare(rec *Record) error {
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating run id: %w", err)
		}
		rec.ID = id.String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
