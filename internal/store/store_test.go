package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/models"
)

func setupMockDB(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db, logger.NewTestLogger(t)), mock
}

// jsonArg matches a JSON argument equal to want.
type jsonArg struct {
	want string
}

func (a jsonArg) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if !ok {
		return false
	}
	var got, want interface{}
	if json.Unmarshal(b, &got) != nil || json.Unmarshal([]byte(a.want), &want) != nil {
		return false
	}
	gb, _ := json.Marshal(got)
	wb, _ := json.Marshal(want)
	return string(gb) == string(wb)
}

func TestSavePreferences(t *testing.T) {
	p, mock := setupMockDB(t)

	prefs := models.UserPreferences{
		models.PrefPetType:        "cat",
		models.PrefLivingSpace:    "apartment",
		models.PrefOtherPets:      true,
		models.PrefBudget:         "100 dollars",
		models.PrefAdditionalInfo: "quiet",
	}

	mock.ExpectExec(`INSERT INTO user_preferences`).
		WithArgs(
			"user-1",
			"cat",
			"apartment",
			nil,
			nil,
			true,
			nil,
			jsonArg{want: `{"budget":"100 dollars","additionalInfo":"quiet"}`},
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, p.SavePreferences(context.Background(), "user-1", prefs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePreferences_Error(t *testing.T) {
	p, mock := setupMockDB(t)
	mock.ExpectExec(`INSERT INTO user_preferences`).WillReturnError(errors.New("deadlock"))

	err := p.SavePreferences(context.Background(), "user-1", models.UserPreferences{})
	assert.True(t, errors.Is(err, ErrDatabaseInsertFailed))
}

func TestSaveMatches(t *testing.T) {
	p, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO ai_matches`).
		WithArgs("user-1", 1, 95, "Great fit", jsonArg{want: `{"careAdvice":["Brush weekly"]}`}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO ai_matches`).
		WithArgs("user-1", 3, 70, "Good fit", jsonArg{want: `{"careAdvice":[]}`}).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := p.SaveMatches(context.Background(), "user-1", []models.MatchResult{
		{PetID: 1, MatchScore: 95, Reasoning: "Great fit", CareAdvice: []string{"Brush weekly"}},
		{PetID: 3, MatchScore: 70, Reasoning: "Good fit"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMatches_RollsBackOnFailure(t *testing.T) {
	p, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO ai_matches`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO ai_matches`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := p.SaveMatches(context.Background(), "user-1", []models.MatchResult{
		{PetID: 1, MatchScore: 95, Reasoning: "a"},
		{PetID: 99, MatchScore: 90, Reasoning: "b"},
	})
	assert.True(t, errors.Is(err, ErrDatabaseInsertFailed))
	assert.Contains(t, err.Error(), "pet 99")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMatches_Empty(t *testing.T) {
	p, mock := setupMockDB(t)
	require.NoError(t, p.SaveMatches(context.Background(), "user-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChatTranscript(t *testing.T) {
	p, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO chat_sessions`).
		WithArgs(sqlmock.AnyArg(), "user-1",
			jsonArg{want: `{"messages":[{"speaker":"user","text":"hi"},{"speaker":"assistant","text":"hello"}]}`}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	transcript := models.AppendTurn(nil, "hi", "hello")
	require.NoError(t, p.SaveChatTranscript(context.Background(), "user-1", transcript))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	p, mock := setupMockDB(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS pets`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, p.Migrate(context.Background()))

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))
	assert.True(t, errors.Is(p.Migrate(context.Background()), ErrMigrationFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaDefinesAllTables(t *testing.T) {
	for _, table := range []string{"pets", "user_preferences", "ai_matches", "chat_sessions"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
