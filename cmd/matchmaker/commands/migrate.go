package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/store"
)

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the matchmaker tables in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			defer zapLog.Sync()

			pg, err := connectPostgres(cmd.Context(), cfg.Database.Postgres, zapLog)
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := store.NewPostgres(pg.DB, logger.NewZapAdapter(zapLog)).Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
