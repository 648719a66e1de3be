package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout sorts lexicographically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps runs in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, seed, rows, cols, mode, pieces, warnings, options, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(timeLayout), strconv.FormatUint(rec.Seed, 10),
		rec.Rows, rec.Cols, rec.Mode, rec.Pieces, rec.Warnings,
		nullString(rec.Options), []byte(rec.Document),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, seed, rows, cols, mode, pieces, warnings, options, document
		 FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("getting run %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, seed, rows, cols, mode, pieces, warnings, options
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRun(rows, false)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner, withDocument bool) (Record, error) {
	var (
		rec     Record
		created string
		seed    string
		options sql.NullString
		doc     []byte
	)
	dest := []any{&rec.ID, &created, &seed, &rec.Rows, &rec.Cols, &rec.Mode, &rec.Pieces, &rec.Warnings, &options}
	if withDocument {
		dest = append(dest, &doc)
	}
	if err := sc.Scan(dest...); err != nil {
		return Record{}, err
	}

	var err error
	if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return Record{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return Record{}, fmt.Errorf("parsing seed: %w", err)
	}
	if options.Valid {
		rec.Options = []byte(options.String)
	}
	if len(doc) > 0 {
		rec.Document = doc
	}
	return rec, nil
}

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

var _ Store = (*SQLiteStore)(nil)
