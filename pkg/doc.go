// Package pkg provides the core libraries for the jigsaw puzzle generator.
//
// # Overview
//
// Jigsaw cuts a rectangular board into a grid of interlocking pieces and
// emits one closed outline per piece. The pkg directory is organized into
// three areas:
//
//  1. [puzzle] - Domain logic (board resolution, edges, tabs, outlines)
//  2. [pipeline] - Orchestration (resolve → edges → outlines → offset → scatter → render)
//  3. Infrastructure ([cache], [store], [observability], [errors])
//
// # Architecture
//
// The typical data flow through jigsaw:
//
//	Board (width, height, rows × cols or a piece count)
//	         ↓
//	    [puzzle] package (resolve the grid)
//	         ↓
//	    [puzzle/edge] package (one random slot per interior edge)
//	         ↓
//	    [puzzle/piece] + [puzzle/tab] packages (closed bezier outlines)
//	         ↓
//	    [puzzle/offset] + [puzzle/transform] packages (optional)
//	         ↓
//	    SVG/JSON/DOT output via [puzzle/sink]
//
// # Quick Start
//
// Generate a 4×6 puzzle and render it to SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/jigsaw/pkg/pipeline"
//	    "github.com/matzehuels/jigsaw/pkg/puzzle/sink"
//	)
//
//	seed := uint64(7)
//	opts := pipeline.Options{Width: 300, Height: 200, Rows: 4, Cols: 6, Seed: &seed}
//	doc, stats, err := pipeline.Generate(context.Background(), opts, seed)
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(doc)
//
// Use [pipeline.Runner] instead to cache documents and artifacts between
// runs with the same seed.
//
// # Main Packages
//
// [geom] - Points, bezier nodes and closed paths shared by every stage.
//
// [puzzle] - Board model, modes (grid, traditional, random) and the emitted
// document with its piece, edge and warning records.
//
// [io] - JSON import and export of documents.
//
// [cache] - File, Redis and no-op caches keyed on generation options.
//
// [store] - SQLite and MongoDB stores for saved runs.
//
// [httputil] - JSON responses and error mapping for the HTTP API.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./...                         # All tests
//	go test ./pkg/puzzle/...              # Domain packages
//	JIGSAW_TEST_MONGO=mongodb://localhost go test ./pkg/store
//
// [puzzle]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/puzzle
// [puzzle/edge]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/puzzle/edge
// [puzzle/piece]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/puzzle/piece
// [puzzle/tab]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/puzzle/tab
// [puzzle/offset]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/puzzle/offset
// [puzzle/transform]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/puzzle/transform
// [puzzle/sink]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/puzzle/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/pipeline#Runner
// [geom]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/geom
// [io]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/store
// [httputil]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/jigsaw/pkg/errors
package pkg
