package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	docio "github.com/matzehuels/jigsaw/pkg/io"
	"github.com/matzehuels/jigsaw/pkg/pipeline"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// inspectCommand creates the interactive inspector.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		board     boardFlags
		runID     string
		row, col  int
		printOnly bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [puzzle.json]",
		Short: "Browse pieces, tabs and warnings interactively",
		Long: `Browse a puzzle piece by piece.

The puzzle comes from a JSON document, a stored run (--run) or, without
either, is generated from the board flags. --print writes the details of
one piece instead of starting the interactive view.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.loadInspectDocument(ctx, cmd, args, runID, &board)
			if err != nil {
				return err
			}
			if row < 0 || row >= doc.Rows || col < 0 || col >= doc.Cols {
				return fmt.Errorf("piece %d,%d is outside the %d×%d board", row, col, doc.Rows, doc.Cols)
			}

			m := NewInspectModel(doc)
			m.Row, m.Col = row, col
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), m.DetailView())
				return nil
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	board.register(cmd.Flags())
	cmd.Flags().StringVar(&runID, "run", "", "inspect a stored run")
	cmd.Flags().IntVar(&row, "row", 0, "initially selected row")
	cmd.Flags().IntVar(&col, "col", 0, "initially selected column")
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the selected piece and exit")

	return cmd
}

func (c *CLI) loadInspectDocument(ctx context.Context, cmd *cobra.Command, args []string, runID string, board *boardFlags) (puzzle.Document, error) {
	switch {
	case len(args) == 1:
		return docio.ImportJSON(args[0])
	case runID != "":
		st, err := c.requireStore(ctx)
		if err != nil {
			return puzzle.Document{}, err
		}
		defer st.Close()
		rec, err := getRun(ctx, st, runID)
		if err != nil {
			return puzzle.Document{}, err
		}
		return rec.Decode()
	default:
		opts, err := board.options(cmd)
		if err != nil {
			return puzzle.Document{}, err
		}
		// Keep going on degenerate edges so they can be inspected.
		if opts.DegeneratePolicy == "" {
			opts.DegeneratePolicy = "warn"
		}
		opts.Logger = c.Logger
		seed, _ := opts.ResolveSeed()
		doc, _, err := pipeline.Generate(ctx, opts, seed)
		return doc, err
	}
}
