package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/propseek/propseek/internal/service"
)

// newGetCmd creates the get command.
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <property_id>",
		Short: "Fetch one property record by id",
		Args:  cobra.ExactArgs(1),
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

			svc := service.NewProperties(st, nil, cfg.Search.CacheSize, cfg.Search.MaxResults)
			p, err := svc.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}
