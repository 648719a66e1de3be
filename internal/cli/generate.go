package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jigsaw/pkg/pipeline"
	"github.com/matzehuels/jigsaw/pkg/store"
)

const defaultOutputBase = "puzzle"

type generateOpts struct {
	board   boardFlags
	formats string
	output  string
	labels  bool
	noCache bool
	refresh bool
	save    bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var o generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate puzzle piece outlines",
		Long: `Generate interlocking piece outlines for a rectangular board.

The board comes from flags or a TOML board file (--config); flags override
values from the file. Either --rows and --cols or --pieces must be given.

Runs with an explicit --seed are cached, so repeating them is instant.
Use --save to keep the run in the run store for 'jigsaw runs'.`,
		Example: `  jigsaw generate --width 300 --height 200 --rows 4 --cols 6
  jigsaw generate --config board.toml -f svg,json -o out/puzzle
  jigsaw generate --width 1000 --height 700 -n 500 --seed 7 --offset 2 -o - > cut.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := o.board.options(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") || len(opts.Formats) == 0 {
				opts.Formats = parseFormats(o.formats)
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			opts.Labels = opts.Labels || o.labels
			opts.Refresh = o.refresh
			return c.runGenerate(cmd.Context(), opts, o)
		},
	}

	o.board.register(cmd.Flags())
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): svg (default), json, dot, interlock (comma-separated)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format, - for stdout) or base path (default puzzle)")
	cmd.Flags().BoolVar(&o.labels, "labels", false, "label pieces with their row and column (svg)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "regenerate even when cached")
	cmd.Flags().BoolVar(&o.save, "save", false, "store the run in the run store")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, o generateOpts) error {
	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	quiet := o.output == stdoutPath
	var spinner *Spinner
	if !quiet {
		spinner = newSpinnerWithContext(ctx, "Generating pieces...")
		spinner.Start()
	}

	watch := startStopwatch(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Generation failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}
	watch.done("Pieces generated", "pieces", result.Stats.Pieces, "cached", result.CacheInfo.PuzzleHit)

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		output:    o.output,
		fallback:  defaultOutputBase,
	})
	if err != nil {
		return err
	}

	var runID string
	if o.save {
		if runID, err = c.saveRun(ctx, result, opts); err != nil {
			return err
		}
	}
	if quiet {
		return nil
	}

	doc := result.Document
	printSuccess("Generated %d pieces", len(doc.Pieces))
	printStats(result.Stats.Pieces, result.Stats.Edges, result.Stats.Warnings, result.CacheInfo.PuzzleHit)
	printKeyValue("board", fmt.Sprintf("%d×%d %s", doc.Rows, doc.Cols, doc.Mode))
	printKeyValue("seed", strconv.FormatUint(result.Seed, 10))
	if runID != "" {
		printKeyValue("run", runID)
	}
	for _, w := range doc.Warnings {
		printWarning("piece %d,%d: %s", w.Row, w.Col, w.Message)
	}
	for _, p := range paths {
		printFile(p)
	}
	if !result.SeedExplicit {
		printNextStep("Reproduce", fmt.Sprintf("add --seed %d", result.Seed))
	}
	return nil
}

// saveRun stores the run with the seed that produced it.
func (c *CLI) saveRun(ctx context.Context, result *pipeline.Result, opts pipeline.Options) (string, error) {
	st, err := c.requireStore(ctx)
	if err != nil {
		return "", err
	}
	defer st.Close()

	opts.Seed = &result.Seed
	rec, err := store.NewRecord(result.Document, opts)
	if err != nil {
		return "", err
	}
	if err := st.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return rec.ID, nil
}
