package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jigsaw/pkg/pipeline"
	"github.com/matzehuels/jigsaw/pkg/store"
)

// runsCommand creates the runs command for the run store.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and manage stored runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsExportCommand())
	cmd.AddCommand(c.runsDeleteCommand())

	return cmd
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				runs, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					printInfo("No stored runs")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), runsTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", store.DefaultListLimit, "maximum number of runs")
	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				rec, err := getRun(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				printRun(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

func (c *CLI) runsExportCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		labels     bool
	)
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Render a stored run to files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Formats: parseFormats(formatsStr), Labels: labels}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				rec, err := getRun(ctx, st, args[0])
				if err != nil {
					return err
				}
				doc, err := rec.Decode()
				if err != nil {
					return fmt.Errorf("run %s: %w", rec.ID, err)
				}
				return c.renderDocument(ctx, doc, opts, output, "run-"+rec.ID, false)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format, - for stdout) or base path (default run-<id>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, interlock (comma-separated)")
	cmd.Flags().BoolVar(&labels, "labels", false, "label pieces with their row and column (svg)")
	return cmd
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return runError(args[0], err)
				}
				printSuccess("Deleted run %s", args[0])
				return nil
			})
		},
	}
}

// withStore opens the run store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.requireStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func getRun(ctx context.Context, st store.Store, id string) (store.Record, error) {
	rec, err := st.Get(ctx, id)
	if err != nil {
		return store.Record{}, runError(id, err)
	}
	return rec, nil
}

func runError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("run %s not found", id)
	}
	return err
}

func runsTable(runs []store.Record) string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d×%d", r.Rows, r.Cols),
			r.Mode,
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(r.Warnings),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Created", "Board", "Mode", "Seed", "Warnings").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == 5 && runs[row].Warnings > 0:
				return StyleWarning.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		}).
		Render()
}

func printRun(w io.Writer, r store.Record) {
	line := func(key, value string) {
		fmt.Fprintln(w, keyValue(key, value))
	}
	line("id", r.ID)
	line("created", r.CreatedAt.Local().Format(time.DateTime))
	line("board", fmt.Sprintf("%d×%d %s", r.Rows, r.Cols, r.Mode))
	line("seed", strconv.FormatUint(r.Seed, 10))
	line("pieces", strconv.Itoa(r.Pieces))
	line("warnings", strconv.Itoa(r.Warnings))
	if len(r.Options) > 0 {
		line("options", string(r.Options))
	}
}
