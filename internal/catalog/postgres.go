package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/models"
)

const petColumns = `id, name, type, breed, age, gender, description, location, image_url, status, personality, care_needs`

const (
	selectAvailablePets = `SELECT ` + petColumns + ` FROM pets WHERE status = $1 ORDER BY id`
	selectAllPets       = `SELECT ` + petColumns + ` FROM pets ORDER BY id`
)

// Postgres reads the pets table.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
	logger  logger.Logger
}

func NewPostgres(db *sql.DB, timeout time.Duration, log logger.Logger) *Postgres {
	return &Postgres{
		db:      db,
		timeout: timeout,
		logger:  logger.ForComponent(log, "catalog.postgres"),
	}
}

func (p *Postgres) GetAvailablePets(ctx context.Context) ([]models.Pet, error) {
	return p.query(ctx, selectAvailablePets, string(models.PetStatusAvailable))
}

// ListPets returns every pet regardless of status.
func (p *Postgres) ListPets(ctx context.Context) ([]models.Pet, error) {
	return p.query(ctx, selectAllPets)
}

func (p *Postgres) query(ctx context.Context, query string, args ...interface{}) ([]models.Pet, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrCatalogTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}
	defer rows.Close()

	var pets []models.Pet
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	p.logger.Debug("loaded pets", map[string]interface{}{"count": len(pets)})
	return pets, nil
}

func scanPet(rows *sql.Rows) (models.Pet, error) {
	var (
		pet                          models.Pet
		gender, location, imageURL   sql.NullString
		status                       string
		personalityRaw, careNeedsRaw []byte
	)
	err := rows.Scan(
		&pet.ID, &pet.Name, &pet.Type, &pet.Breed, &pet.Age,
		&gender, &pet.Description, &location, &imageURL, &status,
		&personalityRaw, &careNeedsRaw,
	)
	if err != nil {
		return models.Pet{}, err
	}

	pet.Gender = gender.String
	pet.Location = location.String
	pet.ImageURL = imageURL.String
	pet.Status = models.PetStatus(status)

	if pet.Personality, err = decodeAttributes(personalityRaw); err != nil {
		return models.Pet{}, fmt.Errorf("pet %d personality: %w", pet.ID, err)
	}
	if pet.CareNeeds, err = decodeAttributes(careNeedsRaw); err != nil {
		return models.Pet{}, fmt.Errorf("pet %d care_needs: %w", pet.ID, err)
	}
	return pet, nil
}
