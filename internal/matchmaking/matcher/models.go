package matcher

import "pet-matchmaker/internal/models"

// rawMatch mirrors one element of the model's reply. Numbers are decoded as
// floats because models sometimes emit 85.0 for an integer score.
type rawMatch struct {
	PetID      float64  `json:"petId"`
	MatchScore float64  `json:"matchScore"`
	Reasoning  string   `json:"reasoning"`
	CareAdvice []string `json:"careAdvice"`
}

func (r rawMatch) result() models.MatchResult {
	advice := r.CareAdvice
	if advice == nil {
		advice = []string{}
	}
	return models.MatchResult{
		PetID:      int(r.PetID),
		MatchScore: int(r.MatchScore),
		Reasoning:  r.Reasoning,
		CareAdvice: advice,
	}
}

const matchResponseSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["petId", "matchScore", "reasoning"],
    "properties": {
      "petId": {"type": "integer"},
      "matchScore": {"type": "integer", "minimum": 1, "maximum": 100},
      "reasoning": {"type": "string"},
      "careAdvice": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

const careAdviceSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {"type": "string", "minLength": 1}
}`

// FallbackCareTips is returned whenever care advice cannot be generated.
var FallbackCareTips = []string{
	"Provide fresh water daily",
	"Maintain a consistent feeding schedule",
	"Schedule regular veterinary checkups",
	"Ensure proper exercise and mental stimulation",
	"Create a safe, comfortable living environment",
}
