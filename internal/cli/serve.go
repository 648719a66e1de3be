package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jigsaw/internal/api"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		maxPieces int
		timeout   time.Duration
		noCache   bool
		noStore   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve puzzle generation over HTTP.

The address, piece cap and request timeout default to the server section of
the config file. Generated runs go to the configured run store unless
--no-store is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadSettings()
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			if !fs.Changed("addr") {
				addr = s.v.GetString(cfgServerAddr)
			}
			if !fs.Changed("max-pieces") {
				maxPieces = s.v.GetInt(cfgServerMax)
			}
			if !fs.Changed("timeout") {
				timeout = s.v.GetDuration(cfgServerTimeout)
			}
			return c.runServe(cmd.Context(), s, api.Config{MaxPieces: maxPieces, RequestTimeout: timeout}, addr, noCache, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&maxPieces, "max-pieces", api.DefaultMaxPieces, "largest board a request may ask for")
	cmd.Flags().DurationVar(&timeout, "timeout", api.DefaultRequestTimeout, "time limit per generation")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not store runs")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, s *settings, cfg api.Config, addr string, noCache, noStore bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if !noStore {
		st, err := s.openStore(ctx)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		if st != nil {
			defer st.Close()
			cfg.Store = st
		}
	}

	cfg.Runner = runner
	cfg.Logger = c.Logger
	return api.New(cfg).ListenAndServe(ctx, addr)
}
