package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-matchmaker/internal/models"
)

func testIndex() PetIndex {
	return NewPetIndex([]models.Pet{
		{ID: 1, Name: "Buddy", Type: "dog", Status: models.PetStatusAvailable},
		{ID: 2, Name: "Whiskers", Type: "cat", Status: models.PetStatusAvailable},
		{ID: 3, Name: "Rex", Type: "dog", Status: models.PetStatusAvailable},
		{ID: 4, Name: "Nibbles", Type: "rabbit", Status: models.PetStatusAvailable},
	})
}

func TestFormat_NoMatches(t *testing.T) {
	got := Format(nil, testIndex(), 3)
	assert.Equal(t, NoMatchesText, got.SummaryText)
	assert.NotNil(t, got.EnrichedMatches)
	assert.Empty(t, got.EnrichedMatches)
}

func TestFormat_SingleMatch(t *testing.T) {
	matches := []models.MatchResult{
		{PetID: 2, MatchScore: 88, Reasoning: "Calm and independent.", CareAdvice: []string{"Brush weekly", "Provide a scratching post"}},
	}

	got := Format(matches, testIndex(), 3)

	want := "Here are your top pet matches:\n\n" +
		"1. Whiskers (ID: 2)\n" +
		"Match Score: 88%\n" +
		"Why this pet: Calm and independent.\n\n" +
		"Care Tips:\n• Brush weekly\n• Provide a scratching post"
	assert.Equal(t, want, got.SummaryText)
	require.Len(t, got.EnrichedMatches, 1)
	assert.Equal(t, "Whiskers", got.EnrichedMatches[0].Name)
	assert.Equal(t, 88, got.EnrichedMatches[0].MatchScore)
}

func TestFormat_LimitsSummaryButEnrichesAll(t *testing.T) {
	matches := []models.MatchResult{
		{PetID: 1, MatchScore: 95, Reasoning: "a"},
		{PetID: 3, MatchScore: 90, Reasoning: "b"},
		{PetID: 2, MatchScore: 80, Reasoning: "c"},
		{PetID: 4, MatchScore: 70, Reasoning: "d"},
	}

	got := Format(matches, testIndex(), 3)

	assert.Contains(t, got.SummaryText, "1. Buddy (ID: 1)")
	assert.Contains(t, got.SummaryText, "2. Rex (ID: 3)")
	assert.Contains(t, got.SummaryText, "3. Whiskers (ID: 2)")
	assert.NotContains(t, got.SummaryText, "Nibbles")
	assert.Contains(t, got.SummaryText, "1. Buddy (ID: 1)\nMatch Score: 95%\nWhy this pet: a\n\nCare Tips:\n\n2. Rex")

	require.Len(t, got.EnrichedMatches, 4)
	for i, id := range []int{1, 3, 2, 4} {
		assert.Equal(t, id, got.EnrichedMatches[i].ID)
	}
}

func TestFormat_UnknownPet(t *testing.T) {
	matches := []models.MatchResult{
		{PetID: 42, MatchScore: 99, Reasoning: "mystery"},
		{PetID: 1, MatchScore: 75, Reasoning: "friendly"},
	}

	got := Format(matches, testIndex(), 0)

	assert.Contains(t, got.SummaryText, "1. 42 (ID: 42)")
	assert.Contains(t, got.SummaryText, "2. Buddy (ID: 1)")
	require.Len(t, got.EnrichedMatches, 1)
	assert.Equal(t, 1, got.EnrichedMatches[0].ID)
}
