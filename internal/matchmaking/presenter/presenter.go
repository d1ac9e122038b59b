// Package presenter renders ranked matches for display.
package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"pet-matchmaker/internal/models"
)

const (
	NoMatchesText = "Sorry, I couldn't find any good matches right now."
	summaryHeader = "Here are your top pet matches:\n\n"

	DefaultMaxDisplay = 3
)

// CandidateLookup resolves a pet id to its catalog record.
type CandidateLookup interface {
	Lookup(id int) (models.Pet, bool)
}

// PetIndex is an in-memory CandidateLookup.
type PetIndex map[int]models.Pet

func NewPetIndex(pets []models.Pet) PetIndex {
	idx := make(PetIndex, len(pets))
	for _, p := range pets {
		idx[p.ID] = p
	}
	return idx
}

func (idx PetIndex) Lookup(id int) (models.Pet, bool) {
	p, ok := idx[id]
	return p, ok
}

type Presentation struct {
	SummaryText     string                 `json:"summaryText"`
	EnrichedMatches []models.EnrichedMatch `json:"enrichedMatches"`
}

// Format summarizes at most maxDisplay matches in the order given and joins
// every match with its catalog record. Matches whose pet cannot be found are
// left out of EnrichedMatches but still summarized by id.
func Format(matches []models.MatchResult, lookup CandidateLookup, maxDisplay int) Presentation {
	if maxDisplay <= 0 {
		maxDisplay = DefaultMaxDisplay
	}
	if len(matches) == 0 {
		return Presentation{SummaryText: NoMatchesText, EnrichedMatches: []models.EnrichedMatch{}}
	}

	shown := matches
	if len(shown) > maxDisplay {
		shown = shown[:maxDisplay]
	}

	entries := make([]string, 0, len(shown))
	for i, m := range shown {
		name := strconv.Itoa(m.PetID)
		if lookup != nil {
			if p, ok := lookup.Lookup(m.PetID); ok && p.Name != "" {
				name = p.Name
			}
		}
		entries = append(entries, formatEntry(i+1, name, m))
	}

	enriched := make([]models.EnrichedMatch, 0, len(matches))
	for _, m := range matches {
		if lookup == nil {
			break
		}
		p, ok := lookup.Lookup(m.PetID)
		if !ok {
			continue
		}
		enriched = append(enriched, models.EnrichedMatch{
			Pet:        p,
			MatchScore: m.MatchScore,
			Reasoning:  m.Reasoning,
			CareAdvice: m.CareAdvice,
		})
	}

	return Presentation{
		SummaryText:     summaryHeader + strings.Join(entries, "\n\n"),
		EnrichedMatches: enriched,
	}
}

func formatEntry(rank int, name string, m models.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s (ID: %d)\n", rank, name, m.PetID)
	fmt.Fprintf(&b, "Match Score: %d%%\n", m.MatchScore)
	fmt.Fprintf(&b, "Why this pet: %s\n\n", m.Reasoning)
	b.WriteString("Care Tips:")
	for _, tip := range m.CareAdvice {
		b.WriteString("\n• ")
		b.WriteString(tip)
	}
	return b.String()
}
