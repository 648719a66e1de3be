package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/jigsaw/pkg/pipeline"
)

// boardFlags holds the generation flags shared by generate and inspect.
// Only flags the user set override values from a board file.
type boardFlags struct {
	config        string
	width, height float64
	originX       float64
	originY       float64
	rows, cols    int
	pieces        int
	maxPieces     int
	mode          string
	seed          uint64
	depthJitter   float64
	shiftJitter   float64
	degenerate    string
	offset        float64
	offsetTimeout time.Duration
	scatter       float64
	workers       int
}

func (b *boardFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&b.config, "config", "", "TOML board file; flags override its values")
	fs.Float64Var(&b.width, "width", 0, "board width")
	fs.Float64Var(&b.height, "height", 0, "board height")
	fs.Float64Var(&b.originX, "origin-x", 0, "board origin x")
	fs.Float64Var(&b.originY, "origin-y", 0, "board origin y")
	fs.IntVar(&b.rows, "rows", 0, "number of rows")
	fs.IntVar(&b.cols, "cols", 0, "number of columns")
	fs.IntVarP(&b.pieces, "pieces", "n", 0, "approximate piece count (instead of --rows/--cols)")
	fs.IntVar(&b.maxPieces, "max-pieces", 0, "reject boards with more pieces than this")
	fs.StringVarP(&b.mode, "mode", "m", "", "tab mode: traditional (default), grid, random")
	fs.Uint64Var(&b.seed, "seed", 0, "random seed (default: drawn from system entropy)")
	fs.Float64Var(&b.depthJitter, "depth-jitter", 0, "tab depth jitter")
	fs.Float64Var(&b.shiftJitter, "shift-jitter", 0, "tab position jitter")
	fs.StringVar(&b.degenerate, "degenerate", "", "degenerate edge policy: fail (default), warn")
	fs.Float64Var(&b.offset, "offset", 0, "offset every outline by this distance (positive grows)")
	fs.DurationVar(&b.offsetTimeout, "offset-timeout", 0, "time limit per piece offset")
	fs.Float64Var(&b.scatter, "scatter", 0, "scatter pieces up to this max displacement in board units")
	fs.IntVar(&b.workers, "workers", 0, "parallel piece builders (default: GOMAXPROCS)")
}

// options builds pipeline options from the board file and changed flags.
func (b *boardFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	var opts pipeline.Options
	if b.config != "" {
		var err error
		if opts, err = loadBoardFile(b.config); err != nil {
			return pipeline.Options{}, err
		}
	}

	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("width", func() { opts.Width = b.width })
	set("height", func() { opts.Height = b.height })
	set("origin-x", func() { opts.OriginX = b.originX })
	set("origin-y", func() { opts.OriginY = b.originY })
	set("rows", func() { opts.Rows = b.rows })
	set("cols", func() { opts.Cols = b.cols })
	set("pieces", func() { opts.TargetPieces = b.pieces })
	set("max-pieces", func() { opts.MaxPieces = b.maxPieces })
	set("mode", func() { opts.Mode = b.mode })
	set("seed", func() { opts.Seed = &b.seed })
	set("depth-jitter", func() { opts.DepthJitter = &b.depthJitter })
	set("shift-jitter", func() { opts.ShiftJitter = b.shiftJitter })
	set("degenerate", func() { opts.DegeneratePolicy = b.degenerate })
	set("offset", func() { opts.OffsetDistance = b.offset })
	set("offset-timeout", func() { opts.OffsetTimeout = b.offsetTimeout })
	set("scatter", func() { opts.ScatterStrength = b.scatter })
	set("workers", func() { opts.Workers = b.workers })

	// Explicit rows or cols on the command line win over a file's piece count.
	if (fs.Changed("rows") || fs.Changed("cols")) && !fs.Changed("pieces") {
		opts.TargetPieces = 0
	}
	return opts, nil
}

// loadBoardFile decodes a TOML board file into pipeline options. Unknown
// keys are rejected so typos do not silently fall back to defaults.
func loadBoardFile(path string) (pipeline.Options, error) {
	var opts pipeline.Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("read board file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return pipeline.Options{}, fmt.Errorf("board file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}
