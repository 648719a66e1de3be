package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	docio "github.com/matzehuels/jigsaw/pkg/io"
	"github.com/matzehuels/jigsaw/pkg/pipeline"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// renderCommand creates the render command for re-rendering a document.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		labels     bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "render [puzzle.json]",
		Short: "Render a saved puzzle document",
		Long: `Render a puzzle document written by 'generate -f json' to other formats.

The document already holds every piece outline, so rendering never
regenerates pieces and always matches the original run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Formats: parseFormats(formatsStr), Labels: labels}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format, - for stdout) or base path")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, interlock (comma-separated)")
	cmd.Flags().BoolVar(&labels, "labels", false, "label pieces with their row and column (svg)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, err := docio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}
	return c.renderDocument(ctx, doc, opts, output, basePath("", input), noCache)
}

// renderDocument renders doc and writes the artifacts.
func (c *CLI) renderDocument(ctx context.Context, doc puzzle.Document, opts pipeline.Options, output, fallback string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		output:    output,
		fallback:  fallback,
	})
	if err != nil || output == stdoutPath {
		return err
	}

	printSuccess("Rendered %d pieces", len(doc.Pieces))
	printStats(len(doc.Pieces), len(doc.Edges), len(doc.Warnings), cacheHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
