package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/propseek/propseek/internal/server"
	"github.com/propseek/propseek/internal/service"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var skipBuild bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		Long: `Serves search, lookup, and claim intake over HTTP. If the database is
empty it is built first by running a full ingestion, unless --skip-build
is given.`,
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

			logger := slog.Default()
			runner := newRunner(cfg, st, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats, err := st.Stats(ctx)
			if err != nil {
				return err
			}
			if stats.Records == 0 && !skipBuild {
				logger.Warn("database_empty_building",
					slog.Int("archives", len(cfg.Source.Archives)))
				if _, err := runner.Run(ctx, cfg.Source.Archives); err != nil {
					return err
				}
			}

			svc := service.NewProperties(st, runner, cfg.Search.CacheSize, cfg.Search.MaxResults)
			srv := server.New(svc, cfg.Server.Host, cfg.Server.Port, logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Serve even if the database is empty")
	return cmd
}
