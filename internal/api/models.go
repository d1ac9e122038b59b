package api

import (
	"pet-matchmaker/internal/matchmaking/conversation"
	"pet-matchmaker/internal/models"
)

type chatRequest struct {
	Kind        conversation.MessageKind `json:"kind"`
	Text        string                   `json:"text"`
	Preferences map[string]interface{}   `json:"preferences"`
	Transcript  []models.TranscriptEntry `json:"transcript"`
}

// Matches is a pointer so a completed interview with no results still
// serializes as an empty array while other turns omit the field.
type chatResponse struct {
	Response         string                   `json:"response"`
	Matches          *[]models.EnrichedMatch  `json:"matches,omitempty"`
	IsMatchingIntent bool                     `json:"isMatchingIntent"`
	Interview        *conversation.Progress   `json:"interview,omitempty"`
	Transcript       []models.TranscriptEntry `json:"transcript"`
}

type matchRequest struct {
	UserPreferences map[string]interface{} `json:"userPreferences"`
}

type matchResponse struct {
	Matches []models.MatchResult `json:"matches"`
}

type careAdviceRequest struct {
	PetType       string `json:"petType"`
	SpecificNeeds string `json:"specificNeeds"`
}

type careAdviceResponse struct {
	Advice []string `json:"advice"`
}

type greetingResponse struct {
	Greeting string `json:"greeting"`
}
