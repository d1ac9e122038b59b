// Package store persists preferences, matches and chat transcripts.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/models"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrMigrationFailed      = errors.New("MIGRATION_FAILED")
)

//go:embed schema.sql
var schemaSQL string

// preferenceColumns maps preference keys to their user_preferences columns.
// Other keys are kept in additional_preferences.
var preferenceColumns = map[string]string{
	models.PrefPetType:       "pet_type",
	models.PrefLivingSpace:   "living_space",
	models.PrefActivityLevel: "activity_level",
	models.PrefExperience:    "experience_level",
	models.PrefOtherPets:     "other_pets",
	models.PrefSpecialNeeds:  "special_needs_ok",
}

const upsertPreferences = `
	INSERT INTO user_preferences (
		user_id, pet_type, living_space, activity_level, experience_level,
		other_pets, special_needs_ok, additional_preferences, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	ON CONFLICT (user_id) DO UPDATE SET
		pet_type = EXCLUDED.pet_type,
		living_space = EXCLUDED.living_space,
		activity_level = EXCLUDED.activity_level,
		experience_level = EXCLUDED.experience_level,
		other_pets = EXCLUDED.other_pets,
		special_needs_ok = EXCLUDED.special_needs_ok,
		additional_preferences = EXCLUDED.additional_preferences,
		updated_at = NOW()`

const insertMatch = `
	INSERT INTO ai_matches (user_id, pet_id, match_score, reasoning, gemini_response, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())`

const insertChatSession = `
	INSERT INTO chat_sessions (id, user_id, session_data, created_at)
	VALUES ($1, $2, $3, NOW())`

type Postgres struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgres(db *sql.DB, log logger.Logger) *Postgres {
	return &Postgres{db: db, logger: logger.ForComponent(log, "store")}
}

// Migrate creates any missing tables and indexes.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	p.logger.Info("schema migrated", nil)
	return nil
}

// SavePreferences upserts the user's latest preferences.
func (p *Postgres) SavePreferences(ctx context.Context, userID string, prefs models.UserPreferences) error {
	additional := make(map[string]interface{})
	for k, v := range prefs {
		if _, ok := preferenceColumns[k]; !ok {
			additional[k] = v
		}
	}
	additionalJSON, err := json.Marshal(additional)
	if err != nil {
		return fmt.Errorf("%w: encode preferences: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = p.db.ExecContext(ctx, upsertPreferences,
		userID,
		nullText(prefs, models.PrefPetType),
		nullText(prefs, models.PrefLivingSpace),
		nullText(prefs, models.PrefActivityLevel),
		nullText(prefs, models.PrefExperience),
		nullBool(prefs, models.PrefOtherPets),
		nullBool(prefs, models.PrefSpecialNeeds),
		additionalJSON,
	)
	if err != nil {
		return fmt.Errorf("%w: user_preferences: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

// SaveMatches stores all matches in one transaction.
func (p *Postgres) SaveMatches(ctx context.Context, userID string, matches []models.MatchResult) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrDatabaseInsertFailed, err)
	}
	defer tx.Rollback()

	for _, m := range matches {
		advice := m.CareAdvice
		if advice == nil {
			advice = []string{}
		}
		response, _ := json.Marshal(map[string]interface{}{"careAdvice": advice})

		if _, err := tx.ExecContext(ctx, insertMatch, userID, m.PetID, m.MatchScore, m.Reasoning, response); err != nil {
			return fmt.Errorf("%w: ai_matches pet %d: %v", ErrDatabaseInsertFailed, m.PetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrDatabaseInsertFailed, err)
	}

	p.logger.Debug("matches saved", map[string]interface{}{
		"userId": userID,
		"count":  len(matches),
	})
	return nil
}

type sessionData struct {
	Messages []models.TranscriptEntry `json:"messages"`
}

// SaveChatTranscript stores the transcript as a new chat_sessions row.
func (p *Postgres) SaveChatTranscript(ctx context.Context, userID string, transcript []models.TranscriptEntry) error {
	if transcript == nil {
		transcript = []models.TranscriptEntry{}
	}
	data, err := json.Marshal(sessionData{Messages: transcript})
	if err != nil {
		return fmt.Errorf("%w: encode transcript: %v", ErrDatabaseInsertFailed, err)
	}

	if _, err := p.db.ExecContext(ctx, insertChatSession, uuid.New().String(), userID, data); err != nil {
		return fmt.Errorf("%w: chat_sessions: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

func nullText(prefs models.UserPreferences, key string) sql.NullString {
	if _, ok := prefs[key]; !ok {
		return sql.NullString{}
	}
	return sql.NullString{String: prefs.Text(key), Valid: true}
}

func nullBool(prefs models.UserPreferences, key string) sql.NullBool {
	v, ok := prefs.Bool(key)
	return sql.NullBool{Bool: v, Valid: ok}
}
