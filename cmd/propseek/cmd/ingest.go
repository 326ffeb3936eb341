package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// newIngestCmd creates the ingest command.
func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [location...]",
		Short: "Download record archives and build the database",
		Long: `Downloads the given archive locations (default: the configured archive
list) and loads their records into the database. Safe to re-run at any
time, including after a failed run: already-loaded records are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			locations := args
			if len(locations) == 0 {
				locations = cfg.Source.Archives
			}

			runner := newRunner(cfg, st, slog.Default())
			sum, err := runner.Run(cmd.Context(), locations)

			fmt.Fprintf(cmd.OutOrStdout(),
				"processed %d rows: %d inserted, %d skipped\n",
				sum.Processed, sum.Inserted, sum.Skipped)
			return err
		},
	}
}
