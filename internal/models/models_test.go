package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates_FiltersUnavailable(t *testing.T) {
	pets := []Pet{
		{ID: 1, Name: "Biscuit", Status: PetStatusAvailable, ImageURL: "/img/1.jpg"},
		{ID: 2, Name: "Mochi", Status: PetStatusAdopted},
		{ID: 3, Name: "Pepper", Status: PetStatusPending},
		{ID: 4, Name: "Juniper", Status: PetStatusAvailable},
	}

	got := Candidates(pets)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 4, got[1].ID)
}

func TestUserPreferences_TextAndBool(t *testing.T) {
	prefs := UserPreferences{
		PrefLivingSpace:  "apartment",
		PrefOtherPets:    true,
		PrefSpecialNeeds: false,
	}

	assert.Equal(t, "apartment", prefs.Text(PrefLivingSpace))
	assert.Equal(t, "yes", prefs.Text(PrefOtherPets))
	assert.Equal(t, "no", prefs.Text(PrefSpecialNeeds))
	assert.Equal(t, "", prefs.Text(PrefBudget))

	v, ok := prefs.Bool(PrefOtherPets)
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = prefs.Bool(PrefLivingSpace)
	assert.False(t, ok)
}

func TestUserPreferences_CloneIsIndependent(t *testing.T) {
	prefs := UserPreferences{PrefPetType: "cat"}
	clone := prefs.Clone()
	clone[PrefPetType] = "dog"

	assert.Equal(t, "cat", prefs[PrefPetType])
}

func TestEnrichedMatch_FlattensPet(t *testing.T) {
	m := EnrichedMatch{
		Pet:        Pet{ID: 7, Name: "Clover", Breed: "Holland Lop", Status: PetStatusAvailable},
		MatchScore: 88,
		Reasoning:  "Quiet and small",
		CareAdvice: []string{"Hay daily"},
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "Clover", flat["name"])
	assert.Equal(t, float64(88), flat["matchScore"])
	assert.NotContains(t, flat, "Pet")
}

func TestAppendTurn_DoesNotMutatePrior(t *testing.T) {
	prior := make([]TranscriptEntry, 1, 4)
	prior[0] = TranscriptEntry{Speaker: SpeakerAssistant, Text: "Hi!"}

	next := AppendTurn(prior, "find me a pet", "What type of pet?")

	require.Len(t, next, 3)
	assert.Len(t, prior, 1)
	assert.Equal(t, SpeakerUser, next[1].Speaker)
	assert.Equal(t, "What type of pet?", next[2].Text)
}
