package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pet-matchmaker/internal/catalog"
	"pet-matchmaker/internal/common/config"
	"pet-matchmaker/internal/common/logger"
)

// NewReindexCmd copies the pets table into the search index used by the
// elasticsearch catalog backend.
func NewReindexCmd() *cobra.Command {
	var index string

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Copy pets from PostgreSQL into Elasticsearch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if index == "" {
				index = cfg.Catalog.Index
			}

			zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			defer zapLog.Sync()
			log := logger.NewZapAdapter(zapLog)
			ctx := cmd.Context()

			pg, err := connectPostgres(ctx, cfg.Database.Postgres, zapLog)
			if err != nil {
				return err
			}
			defer pg.Close()

			es, err := connectElasticsearch(ctx, cfg.Database.Elasticsearch, zapLog)
			if err != nil {
				return err
			}
			defer es.Close()

			timeout := config.GetDuration(cfg.Catalog.Timeout)
			pets, err := catalog.NewPostgres(pg.DB, timeout, log).ListPets(ctx)
			if err != nil {
				return err
			}
			if err := catalog.NewElasticsearch(es.Client, index, timeout, log).IndexPets(ctx, pets); err != nil {
				return err
			}

			zapLog.Info("Reindex complete", zap.String("index", index), zap.Int("pets", len(pets)))
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d pets into %s\n", len(pets), index)
			return nil
		},
	}

	cmd.Flags().StringVar(&index, "index", "", "target index (overrides catalog.index)")
	return cmd
}
