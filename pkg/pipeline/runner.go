package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jigsaw/pkg/cache"
	docio "github.com/matzehuels/jigsaw/pkg/io"
	"github.com/matzehuels/jigsaw/pkg/observability"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/puzzle/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs generation and rendering with caching.
//
// Documents are cached only when the options carry an explicit seed: an
// entropy-seeded run is new by definition.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	seed, explicit := opts.ResolveSeed()
	result := &Result{Seed: seed, SeedExplicit: explicit}

	doc, stats, hit, err := r.GenerateWithCacheInfo(ctx, opts, seed, explicit)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats = stats
	result.CacheInfo.PuzzleHit = hit

	r.Logger.Info("generated pieces",
		"board", fmt.Sprintf("%d×%d", doc.Rows, doc.Cols),
		"mode", doc.Mode,
		"seed", seed,
		"warnings", len(doc.Warnings),
		"cached", hit,
		"duration", stats.GenerateTime)
	for _, w := range doc.Warnings {
		r.Logger.Warn(w.Message, "row", w.Row, "col", w.Col, "code", w.Code)
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo generates the document for seed, consulting the
// cache when cacheable is set, and reports whether it was a cache hit.
// Options with a custom Offsetter are never cached.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options, seed uint64, cacheable bool) (puzzle.Document, Stats, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return puzzle.Document{}, Stats{}, false, fmt.Errorf("invalid options: %w", err)
	}

	cacheable = cacheable && opts.Offsetter == nil
	key := r.Keyer.PuzzleKey(opts.PuzzleKeyOpts(seed))
	if cacheable && !opts.Refresh {
		if doc, ok := r.cachedDocument(ctx, key); ok {
			return doc, Stats{
				Rows:     doc.Rows,
				Cols:     doc.Cols,
				Pieces:   len(doc.Pieces),
				Edges:    len(doc.Edges),
				Warnings: len(doc.Warnings),
			}, true, nil
		}
	}

	doc, stats, err := Generate(ctx, opts, seed)
	if err != nil {
		return puzzle.Document{}, stats, false, err
	}

	if cacheable {
		if data, err := sink.RenderJSON(doc); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLPuzzle); err == nil {
				observability.Cache().OnCacheSet(ctx, cache.KeyTypePuzzle, len(data))
			} else {
				r.Logger.Debug("cache write failed", "err", err)
			}
		}
	}
	return doc, stats, false, nil
}

func (r *Runner) cachedDocument(ctx context.Context, key string) (puzzle.Document, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypePuzzle)
		return puzzle.Document{}, false
	}
	doc, err := docio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		// Unreadable entries are regenerated and overwritten.
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypePuzzle)
		return puzzle.Document{}, false
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyTypePuzzle)
	return doc, true
}

// RenderWithCacheInfo renders doc in every requested format, using cached
// artifacts when all of them are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc puzzle.Document, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	docData, err := sink.RenderJSON(doc)
	if err != nil {
		return nil, false, fmt.Errorf("serialize document for cache key: %w", err)
	}
	docHash := cache.Hash(docData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format)))
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, cache.KeyTypeArtifact)
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, cache.KeyTypeArtifact)
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, doc, opts.RenderOptions())
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		if err := r.Cache.Set(ctx, r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
