// Package pipeline runs puzzle generation end to end for the CLI and the
// API server.
//
// # Stages
//
//  1. Resolve: turn the sizing intent into a [puzzle.Board]
//  2. Edges: draw every interior edge slot in one pass
//  3. Pieces: build all outlines with a bounded worker pool
//  4. Offset: grow or shrink each outline (optional, per-piece failures
//     become warnings)
//  5. Scatter: attach placement deltas (optional)
//  6. Render: produce the requested output formats
//
// Stage 2 always completes before stage 3 starts, so every piece sees the
// final shared edges.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	seed := uint64(7)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Width: 800, Height: 600, TargetPieces: 48,
//	    Seed:    &seed,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Without a seed the runner draws one from system entropy and reports it in
// [Result.Seed], so any run can be reproduced.
package pipeline

import (
	"io"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jigsaw/pkg/cache"
	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/puzzle/edge"
	"github.com/matzehuels/jigsaw/pkg/puzzle/offset"
	"github.com/matzehuels/jigsaw/pkg/puzzle/piece"
)

// Format constants for output formats.
const (
	FormatSVG       = "svg"
	FormatJSON      = "json"
	FormatDOT       = "dot"
	FormatInterlock = "interlock"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:       true,
	FormatJSON:      true,
	FormatDOT:       true,
	FormatInterlock: true,
}

// FormatExt maps a format to its file extension.
var FormatExt = map[string]string{
	FormatSVG:       ".svg",
	FormatJSON:      ".json",
	FormatDOT:       ".dot",
	FormatInterlock: ".interlock.svg",
}

// Options contains all configuration for a generation run. It is decoded
// from API requests (JSON) and board files (TOML).
type Options struct {
	// Board
	OriginX      float64 `json:"origin_x,omitempty" toml:"origin_x"`
	OriginY      float64 `json:"origin_y,omitempty" toml:"origin_y"`
	Width        float64 `json:"width" toml:"width"`
	Height       float64 `json:"height" toml:"height"`
	Rows         int     `json:"rows,omitempty" toml:"rows"`
	Cols         int     `json:"cols,omitempty" toml:"cols"`
	TargetPieces int     `json:"target_pieces,omitempty" toml:"target_pieces"`
	MaxPieces    int     `json:"max_pieces,omitempty" toml:"max_pieces"`
	Mode         string  `json:"mode,omitempty" toml:"mode"`

	// Edges. A nil DepthJitter uses edge.DefaultDepthJitter.
	DepthJitter      *float64 `json:"depth_jitter,omitempty" toml:"depth_jitter"`
	ShiftJitter      float64  `json:"shift_jitter,omitempty" toml:"shift_jitter"`
	DegeneratePolicy string   `json:"degenerate_policy,omitempty" toml:"degenerate_policy"`

	// Post-processing
	OffsetDistance  float64 `json:"offset_distance,omitempty" toml:"offset_distance"`
	ScatterStrength float64 `json:"scatter_strength,omitempty" toml:"scatter_strength"`

	// Seed makes the run reproducible. Nil draws one from system entropy.
	Seed *uint64 `json:"seed,omitempty" toml:"seed"`

	// Execution
	Workers int      `json:"workers,omitempty" toml:"workers"`
	Formats []string `json:"formats,omitempty" toml:"formats"`
	Labels  bool     `json:"labels,omitempty" toml:"labels"`
	Refresh bool     `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger        *log.Logger      `json:"-" toml:"-"`
	Offsetter     offset.Offsetter `json:"-" toml:"-"`
	OffsetTimeout time.Duration    `json:"-" toml:"-"`

	mode      puzzle.Mode
	policy    piece.Policy
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the generated puzzle.
	Document puzzle.Document

	// Seed is the seed that drove the run, drawn from entropy when the
	// options carried none.
	Seed         uint64
	SeedExplicit bool

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows, Cols   int
	Pieces       int
	Edges        int
	Warnings     int
	GenerateTime time.Duration
	OffsetTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	PuzzleHit bool // document came from cache
	RenderHit bool // every artifact came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, dot, interlock)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the non-geometric options and applies
// defaults. Board geometry is checked when the board is resolved, so that
// INVALID_GEOMETRY is reported by the same code path for every caller.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	mode, err := puzzle.ParseMode(o.Mode)
	if err != nil {
		return err
	}
	o.mode, o.Mode = mode, string(mode)

	if o.policy, err = piece.ParsePolicy(o.DegeneratePolicy); err != nil {
		return err
	}
	o.DegeneratePolicy = o.policy.String()

	if o.DepthJitter == nil {
		d := edge.DefaultDepthJitter
		o.DepthJitter = &d
	}
	if err := o.EdgeOptions().Validate(); err != nil {
		return err
	}
	if err := errors.ValidateFinite("offset_distance", o.OffsetDistance); err != nil {
		return err
	}
	if err := errors.ValidateFinite("scatter_strength", o.ScatterStrength); err != nil {
		return err
	}

	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// BoardConfig returns the sizing intent for puzzle.Resolve.
func (o *Options) BoardConfig() puzzle.Config {
	return puzzle.Config{
		OriginX:      o.OriginX,
		OriginY:      o.OriginY,
		Width:        o.Width,
		Height:       o.Height,
		Rows:         o.Rows,
		Cols:         o.Cols,
		TargetPieces: o.TargetPieces,
		Mode:         o.mode,
		MaxPieces:    o.MaxPieces,
	}
}

// EdgeOptions returns the jitter ranges for edge.Generate.
func (o *Options) EdgeOptions() edge.Options {
	opts := edge.Options{ShiftJitter: o.ShiftJitter, DepthJitter: edge.DefaultDepthJitter}
	if o.DepthJitter != nil {
		opts.DepthJitter = *o.DepthJitter
	}
	return opts
}

// ResolveSeed returns the explicit seed, or a fresh one from system entropy.
func (o *Options) ResolveSeed() (seed uint64, explicit bool) {
	if o.Seed != nil {
		return *o.Seed, true
	}
	return rand.Uint64(), false
}

// RenderOptions returns the render stage options.
func (o *Options) RenderOptions() RenderOptions {
	return RenderOptions{Formats: o.Formats, Labels: o.Labels}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Labels: o.Labels}
}

// offsetTimeout is the effective per-piece offset limit. It only affects
// documents that offset curved pieces.
func (o *Options) offsetTimeout() time.Duration {
	if o.OffsetDistance == 0 || !puzzle.Mode(o.Mode).Curved() {
		return 0
	}
	if o.OffsetTimeout <= 0 {
		return offset.DefaultTimeout
	}
	return o.OffsetTimeout
}

// PuzzleKeyOpts returns cache key options for a generated document.
func (o *Options) PuzzleKeyOpts(seed uint64) cache.PuzzleKeyOpts {
	return cache.PuzzleKeyOpts{
		OriginX:          o.OriginX,
		OriginY:          o.OriginY,
		Width:            o.Width,
		Height:           o.Height,
		Rows:             o.Rows,
		Cols:             o.Cols,
		TargetPieces:     o.TargetPieces,
		MaxPieces:        o.MaxPieces,
		Mode:             o.Mode,
		Seed:             seed,
		DepthJitter:      o.EdgeOptions().DepthJitter,
		ShiftJitter:      o.ShiftJitter,
		OffsetDistance:   o.OffsetDistance,
		OffsetTimeout:    o.offsetTimeout(),
		ScatterStrength:  o.ScatterStrength,
		DegeneratePolicy: o.DegeneratePolicy,
	}
}
