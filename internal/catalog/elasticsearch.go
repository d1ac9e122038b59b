package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/models"
)

const (
	DefaultIndex = "pets"
	maxPageSize  = 1000
)

// Elasticsearch reads pets from a search index whose documents are Pet JSON.
type Elasticsearch struct {
	client  *elasticsearch.Client
	index   string
	timeout time.Duration
	logger  logger.Logger
}

func NewElasticsearch(client *elasticsearch.Client, index string, timeout time.Duration, log logger.Logger) *Elasticsearch {
	if index == "" {
		index = DefaultIndex
	}
	return &Elasticsearch{
		client:  client,
		index:   index,
		timeout: timeout,
		logger:  logger.ForComponent(log, "catalog.elasticsearch").With(map[string]interface{}{"index": index}),
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Pet `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *Elasticsearch) GetAvailablePets(ctx context.Context) ([]models.Pet, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"status": string(models.PetStatusAvailable)}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"id": "asc"},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	size := maxPageSize
	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrCatalogTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSearchQueryFailed, err)
	}

	pets := make([]models.Pet, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		if !h.Source.IsAvailable() {
			continue
		}
		pets = append(pets, h.Source)
	}

	e.logger.Debug("loaded pets", map[string]interface{}{"count": len(pets)})
	return pets, nil
}

// IndexPets writes pets into the index keyed by id, replacing existing
// documents.
func (e *Elasticsearch) IndexPets(ctx context.Context, pets []models.Pet) error {
	for _, pet := range pets {
		doc, err := json.Marshal(pet)
		if err != nil {
			return fmt.Errorf("%w: encode pet %d: %v", ErrSearchQueryFailed, pet.ID, err)
		}

		req := esapi.IndexRequest{
			Index:      e.index,
			DocumentID: strconv.Itoa(pet.ID),
			Body:       bytes.NewReader(doc),
		}
		res, err := req.Do(ctx, e.client)
		if err != nil {
			return fmt.Errorf("%w: index pet %d: %v", ErrSearchQueryFailed, pet.ID, err)
		}
		failed := res.IsError()
		status := res.String()
		res.Body.Close()
		if failed {
			return fmt.Errorf("%w: index pet %d: %s", ErrSearchQueryFailed, pet.ID, status)
		}
	}

	e.logger.Info("indexed pets", map[string]interface{}{"count": len(pets)})
	return nil
}
