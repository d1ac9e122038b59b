package models

type PetStatus string

const (
	PetStatusAvailable PetStatus = "available"
	PetStatusPending   PetStatus = "pending"
	PetStatusAdopted   PetStatus = "adopted"
)

// Attributes is a loosely structured bag of pet traits. Values are strings,
// numbers, booleans or string lists.
type Attributes map[string]interface{}

// Pet is a full catalog record.
type Pet struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Breed       string     `json:"breed"`
	Age         string     `json:"age"`
	Gender      string     `json:"gender,omitempty"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Status      PetStatus  `json:"status"`
	Personality Attributes `json:"personality,omitempty"`
	CareNeeds   Attributes `json:"careNeeds,omitempty"`
}

func (p Pet) IsAvailable() bool {
	return p.Status == PetStatusAvailable
}

// CandidatePet is the projection of a Pet handed to the matching model.
type CandidatePet struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Breed       string     `json:"breed"`
	Age         string     `json:"age"`
	Personality Attributes `json:"personality"`
	CareNeeds   Attributes `json:"careNeeds"`
	Description string     `json:"description"`
}

func (p Pet) Candidate() CandidatePet {
	return CandidatePet{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		Breed:       p.Breed,
		Age:         p.Age,
		Personality: p.Personality,
		CareNeeds:   p.CareNeeds,
		Description: p.Description,
	}
}

// Candidates projects the available pets, preserving catalog order.
func Candidates(pets []Pet) []CandidatePet {
	out := make([]CandidatePet, 0, len(pets))
	for _, p := range pets {
		if p.IsAvailable() {
			out = append(out, p.Candidate())
		}
	}
	return out
}
