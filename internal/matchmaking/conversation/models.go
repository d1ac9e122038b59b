package conversation

import (
	"context"

	"pet-matchmaker/internal/models"
)

// Greeting is the assistant's opening line, shown by clients before the
// first turn.
const Greeting = "Hi! I'm your AI pet companion assistant. I can help you find the perfect pet or answer any questions about pet care. How can I help you today?"

type MessageKind string

const (
	KindChat              MessageKind = "chat"
	KindSubmitPreferences MessageKind = "submitPreferences"
)

// Message is one inbound turn: either free text or a complete preference
// form submitted in a single step.
type Message struct {
	Kind        MessageKind            `json:"kind"`
	Text        string                 `json:"text,omitempty"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

type Progress struct {
	Step  int `json:"step"`
	Total int `json:"total"`
}

// TurnResult is the outcome of one turn. Matches is non-nil, possibly
// empty, only on turns that ran matching.
type TurnResult struct {
	Reply            string                   `json:"response"`
	Matches          []models.EnrichedMatch   `json:"matches,omitempty"`
	IsMatchingIntent bool                     `json:"isMatchingIntent"`
	Interview        *Progress                `json:"interview,omitempty"`
	Transcript       []models.TranscriptEntry `json:"-"`
}

type Matcher interface {
	FindMatches(ctx context.Context, prefs models.UserPreferences, candidates []models.CandidatePet) ([]models.MatchResult, error)
	GetChatResponse(ctx context.Context, message string, history []models.TranscriptEntry) (string, error)
}

type Catalog interface {
	GetAvailablePets(ctx context.Context) ([]models.Pet, error)
}

type Repository interface {
	SavePreferences(ctx context.Context, userID string, prefs models.UserPreferences) error
	SaveMatches(ctx context.Context, userID string, matches []models.MatchResult) error
	SaveChatTranscript(ctx context.Context, userID string, transcript []models.TranscriptEntry) error
}
