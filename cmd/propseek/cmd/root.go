// Package cmd provides the CLI commands for PropSeek.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/propseek/propseek/internal/config"
	"github.com/propseek/propseek/internal/fetch"
	"github.com/propseek/propseek/internal/ingest"
	"github.com/propseek/propseek/internal/logging"
	"github.com/propseek/propseek/internal/store"
	"github.com/propseek/propseek/pkg/version"
)

var (
	cfgFile   string
	debugMode bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the propseek CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propseek",
		Short: "Searchable database over state unclaimed-property record dumps",
		Long: `PropSeek ingests the State Controller's downloadable unclaimed-property
CSV archives into a local SQLite database with a full-text search index,
and serves owner/holder search and exact-id lookup over it.

Re-running ingestion is always safe: records dedup by property id and
the search index stays transactionally in step with the store.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("propseek version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "propseek.yaml", "Path to config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.propseek/logs/")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = teardownLogging

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setupLogging installs the default slog logger. Debug mode adds a
// rotated file in ~/.propseek/logs/; otherwise logs go to stderr only.
func setupLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.Config{Level: "info", WriteToStderr: true}
	if debugMode {
		logCfg = logging.DebugConfig()
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// loadConfig reads the configured config file.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// openStore opens the record store configured in cfg.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Storage.DBPath, store.Options{CacheMB: cfg.Storage.CacheMB})
}

// newRunner builds an ingestion runner with the run lock scoped to the
// data directory.
func newRunner(cfg *config.Config, st *store.Store, logger *slog.Logger) *ingest.Runner {
	fetcher := fetch.NewClient(cfg.Source.BaseURL, cfg.Source.FetchTimeoutDuration(), cfg.Source.FetchesPerMinute)
	lock := ingest.NewRunLock(cfg.Storage.DataDir)
	return ingest.NewRunner(st, fetcher, cfg.Storage.ChunkSize, lock, logger)
}
