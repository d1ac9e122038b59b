package models

// MatchResult is one scored candidate returned by the matching model.
type MatchResult struct {
	PetID      int      `json:"petId"`
	MatchScore int      `json:"matchScore"`
	Reasoning  string   `json:"reasoning"`
	CareAdvice []string `json:"careAdvice"`
}

// EnrichedMatch joins a MatchResult with the catalog record it refers to.
type EnrichedMatch struct {
	Pet
	MatchScore int      `json:"matchScore"`
	Reasoning  string   `json:"reasoning"`
	CareAdvice []string `json:"careAdvice"`
}
