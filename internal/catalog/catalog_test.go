package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-matchmaker/internal/common/config"
	"pet-matchmaker/internal/common/database"
	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/models"
)

var petRowColumns = []string{
	"id", "name", "type", "breed", "age", "gender", "description", "location",
	"image_url", "status", "personality", "care_needs",
}

func setupMockDB(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db, time.Second, logger.NewTestLogger(t)), mock
}

func TestPostgres_GetAvailablePets(t *testing.T) {
	p, mock := setupMockDB(t)

	rows := sqlmock.NewRows(petRowColumns).
		AddRow(1, "Buddy", "dog", "Labrador", "2 years", "male", "Friendly lab", "Austin", "https://img/1.jpg", "available",
			[]byte(`{"energy":"high","traits":["playful","loyal"]}`), []byte(`{"exercise":"daily walks"}`)).
		AddRow(2, "Whiskers", "cat", "Tabby", "4 years", nil, "Calm cat", nil, nil, "available", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectAvailablePets)).
		WithArgs("available").
		WillReturnRows(rows)

	pets, err := p.GetAvailablePets(context.Background())
	require.NoError(t, err)
	require.Len(t, pets, 2)

	assert.Equal(t, "Buddy", pets[0].Name)
	assert.Equal(t, "https://img/1.jpg", pets[0].ImageURL)
	assert.Equal(t, models.PetStatusAvailable, pets[0].Status)
	assert.Equal(t, "high", pets[0].Personality["energy"])
	assert.Equal(t, []interface{}{"playful", "loyal"}, pets[0].Personality["traits"])
	assert.Equal(t, "daily walks", pets[0].CareNeeds["exercise"])

	assert.Equal(t, "", pets[1].Gender)
	assert.NotNil(t, pets[1].Personality)
	assert.Empty(t, pets[1].CareNeeds)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(sqlmock.Sqlmock)
	}{
		{
			name: "query fails",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectAvailablePets)).WillReturnError(errors.New("connection reset"))
			},
		},
		{
			name: "bad personality json",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectAvailablePets)).WillReturnRows(
					sqlmock.NewRows(petRowColumns).AddRow(1, "Buddy", "dog", "Lab", "2", nil, "d", nil, nil, "available", []byte(`{`), nil))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mock := setupMockDB(t)
			tt.setup(mock)

			_, err := p.GetAvailablePets(context.Background())
			assert.True(t, errors.Is(err, ErrQueryExecutionFailed), "got %v", err)
		})
	}
}

func TestPostgres_ListPets(t *testing.T) {
	p, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectAllPets)).WillReturnRows(
		sqlmock.NewRows(petRowColumns).
			AddRow(1, "Buddy", "dog", "Lab", "2", nil, "d", nil, nil, "adopted", nil, nil))

	pets, err := p.ListPets(context.Background())
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, models.PetStatusAdopted, pets[0].Status)
}

type fakeES struct {
	mu       sync.Mutex
	bodies   []string
	paths    []string
	status   int
	response string
}

func (f *fakeES) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies = append(f.bodies, string(body))
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write([]byte(f.response))
}

func setupES(t *testing.T, f *fakeES) *elasticsearch.Client {
	server := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearch_GetAvailablePets(t *testing.T) {
	f := &fakeES{response: `{"hits":{"total":{"value":2},"hits":[
		{"_id":"1","_source":{"id":1,"name":"Buddy","type":"dog","breed":"Lab","age":"2","description":"d","status":"available","personality":{"energy":"high"}}},
		{"_id":"7","_source":{"id":7,"name":"Stale","type":"cat","breed":"Tabby","age":"3","description":"d","status":"adopted"}}
	]}}`}
	es := NewElasticsearch(setupES(t, f), "", time.Second, logger.NewNoOpLogger())

	pets, err := es.GetAvailablePets(context.Background())
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, "Buddy", pets[0].Name)
	assert.Equal(t, "high", pets[0].Personality["energy"])

	require.Len(t, f.paths, 1)
	assert.True(t, strings.HasSuffix(f.paths[0], "/pets/_search"))

	var query map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(f.bodies[0]), &query))
	assert.Contains(t, query, "query")
	assert.Contains(t, f.bodies[0], `"status":"available"`)
}

func TestElasticsearch_SearchError(t *testing.T) {
	f := &fakeES{status: http.StatusBadRequest, response: `{"error":{"type":"index_not_found_exception"}}`}
	es := NewElasticsearch(setupES(t, f), "pets", time.Second, logger.NewNoOpLogger())

	_, err := es.GetAvailablePets(context.Background())
	assert.True(t, errors.Is(err, ErrSearchQueryFailed))
	assert.Contains(t, err.Error(), "index_not_found_exception")
}

func TestElasticsearch_IndexPets(t *testing.T) {
	f := &fakeES{response: `{"result":"created"}`}
	es := NewElasticsearch(setupES(t, f), "shelter", time.Second, logger.NewNoOpLogger())

	err := es.IndexPets(context.Background(), []models.Pet{
		{ID: 3, Name: "Clover", Status: models.PetStatusAvailable},
		{ID: 4, Name: "Pip", Status: models.PetStatusPending},
	})
	require.NoError(t, err)

	require.Len(t, f.paths, 2)
	assert.True(t, strings.HasSuffix(f.paths[0], "/shelter/_doc/3"))
	assert.Contains(t, f.bodies[1], `"name":"Pip"`)
}

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	pg := &database.PostgresClient{DB: db}

	c, err := New(config.CatalogConfig{Backend: config.CatalogBackendPostgres}, pg, nil, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.IsType(t, &Postgres{}, c)

	_, err = New(config.CatalogConfig{Backend: config.CatalogBackendElasticsearch}, pg, nil, logger.NewNoOpLogger())
	assert.Error(t, err)

	_, err = New(config.CatalogConfig{Backend: "csv"}, pg, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}
