package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/observability"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/puzzle/edge"
	"github.com/matzehuels/jigsaw/pkg/puzzle/offset"
	"github.com/matzehuels/jigsaw/pkg/puzzle/piece"
	"github.com/matzehuels/jigsaw/pkg/puzzle/transform"
)

// EdgeRNG returns the random source that draws edge slots for seed.
func EdgeRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Generate runs every geometric stage for one seed, without caching or
// rendering. The same options and seed always yield the same document.
//
// A canceled context aborts between pieces with CANCELED and no document.
func Generate(ctx context.Context, opts Options, seed uint64) (puzzle.Document, Stats, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return puzzle.Document{}, Stats{}, fmt.Errorf("invalid options: %w", err)
	}

	var stats Stats
	start := time.Now()

	b, err := puzzle.Resolve(opts.BoardConfig())
	if err != nil {
		return puzzle.Document{}, stats, fmt.Errorf("resolve board: %w", err)
	}
	stats.Rows, stats.Cols = b.Rows, b.Cols

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, string(b.Mode), b.Rows, b.Cols)
	doc, err := generate(ctx, b, opts, seed, &stats)
	stats.GenerateTime = time.Since(start)
	hooks.OnGenerateComplete(ctx, string(b.Mode), len(doc.Pieces), stats.GenerateTime, err)
	if err != nil {
		return puzzle.Document{}, stats, err
	}

	for _, w := range doc.Warnings {
		hooks.OnPieceWarning(ctx, w.Row, w.Col, string(w.Code))
	}
	stats.Pieces = len(doc.Pieces)
	stats.Edges = len(doc.Edges)
	stats.Warnings = len(doc.Warnings)
	return doc, stats, nil
}

func generate(ctx context.Context, b puzzle.Board, opts Options, seed uint64, stats *Stats) (puzzle.Document, error) {
	slots := edge.Generate(b, EdgeRNG(seed), opts.EdgeOptions())
	opts.Logger.Debug("generated edge slots", "slots", slots.Len(), "seed", seed)

	builder := &piece.Builder{Board: b, Slots: slots, Policy: opts.policy}
	records := make([]puzzle.PieceRecord, b.Count())
	warnings := make([][]puzzle.Warning, b.Count())

	err := forEachCell(ctx, b, opts.Workers, func(i int, cell puzzle.Cell) error {
		path, warns, err := builder.Build(cell.Row, cell.Col)
		if err != nil {
			return err
		}
		records[i] = puzzle.PieceRecord{Row: cell.Row, Col: cell.Col, Boundary: path}
		warnings[i] = warns
		return nil
	})
	if err != nil {
		return puzzle.Document{}, fmt.Errorf("build pieces: %w", err)
	}

	if opts.OffsetDistance != 0 {
		offsetStart := time.Now()
		adapter := offset.Adapter{Mode: b.Mode, Curve: opts.Offsetter, Timeout: opts.OffsetTimeout}
		err := forEachCell(ctx, b, opts.Workers, func(i int, cell puzzle.Cell) error {
			out, err := adapter.Offset(ctx, records[i].Boundary, opts.OffsetDistance)
			if errors.Is(err, errors.ErrCodeCanceled) {
				return err
			}
			if err != nil {
				warnings[i] = append(warnings[i], puzzle.NewWarning(cell, err))
				return nil
			}
			records[i].OffsetBoundary = &out
			return nil
		})
		if err != nil {
			return puzzle.Document{}, fmt.Errorf("offset pieces: %w", err)
		}
		stats.OffsetTime = time.Since(offsetStart)
	}

	if opts.ScatterStrength > 0 {
		records = transform.Scatter(records, opts.ScatterStrength, transform.ScatterRNG(seed))
	}

	doc := puzzle.NewDocument(b, seed)
	doc.OffsetDistance = opts.OffsetDistance
	doc.ScatterStrength = max(opts.ScatterStrength, 0)
	doc.Pieces = records
	doc.Edges = edgeRecords(slots)
	doc.Warnings = slices.Concat(warnings...)
	return doc, nil
}

// forEachCell calls fn for every cell of b on at most workers goroutines.
// Cells are handed out in row-major order and i is the cell's row-major
// index. Once a call fails no further cells are started; the error of the
// lowest failing index is returned, so the reported cell does not depend on
// scheduling. The context is checked before every cell.
func forEachCell(ctx context.Context, b puzzle.Board, workers int, fn func(i int, cell puzzle.Cell) error) error {
	cells := b.Cells()
	errs := make([]error, len(cells))
	var failed atomic.Bool

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, cell := range cells {
		if ctx.Err() != nil || failed.Load() {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := fn(i, cell); err != nil {
				errs[i] = err
				failed.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeCanceled, err, "generation canceled")
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func edgeRecords(slots *edge.Slots) []puzzle.EdgeRecord {
	keys := slots.Keys()
	if len(keys) == 0 {
		return nil
	}
	out := make([]puzzle.EdgeRecord, 0, len(keys))
	for _, k := range keys {
		slot, _ := slots.Lookup(k)
		out = append(out, puzzle.EdgeRecord{
			Axis:        k.Axis.String(),
			Owner:       edge.OwnerOf(k),
			Other:       edge.OtherOf(k),
			TabSign:     slot.TabSign,
			DepthJitter: slot.DepthJitter,
			ShiftJitter: slot.ShiftJitter,
		})
	}
	return out
}

// BoundaryOf returns the outline of one cell without running the rest of
// the pipeline.
func BoundaryOf(opts Options, seed uint64, row, col int) (geom.Path, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return geom.Path{}, err
	}
	b, err := puzzle.Resolve(opts.BoardConfig())
	if err != nil {
		return geom.Path{}, err
	}
	slots := edge.Generate(b, EdgeRNG(seed), opts.EdgeOptions())
	builder := &piece.Builder{Board: b, Slots: slots, Policy: opts.policy}
	path, _, err := builder.Build(row, col)
	return path, err
}
