// Package catalog reads adoptable pets from the configured backend.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pet-matchmaker/internal/common/config"
	"pet-matchmaker/internal/common/database"
	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/models"
)

var (
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrSearchQueryFailed    = errors.New("SEARCH_QUERY_FAILED")
	ErrCatalogTimeout       = errors.New("CATALOG_TIMEOUT")
)

// Catalog lists the pets that may be offered to adopters.
type Catalog interface {
	GetAvailablePets(ctx context.Context) ([]models.Pet, error)
}

// New selects the backend named in cfg.Backend.
func New(cfg config.CatalogConfig, pg *database.PostgresClient, es *database.ElasticsearchClient, log logger.Logger) (Catalog, error) {
	timeout := config.GetDuration(cfg.Timeout)
	switch cfg.Backend {
	case config.CatalogBackendPostgres, "":
		if pg == nil {
			return nil, fmt.Errorf("postgres catalog needs a database connection")
		}
		return NewPostgres(pg.DB, timeout, log), nil
	case config.CatalogBackendElasticsearch:
		if es == nil {
			return nil, fmt.Errorf("elasticsearch catalog needs a search client")
		}
		return NewElasticsearch(es.Client, cfg.Index, timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}

func decodeAttributes(raw []byte) (models.Attributes, error) {
	if len(raw) == 0 {
		return models.Attributes{}, nil
	}
	var attrs models.Attributes
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = models.Attributes{}
	}
	return attrs, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
