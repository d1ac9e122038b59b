package preferences

import (
	"fmt"
	"strings"

	"pet-matchmaker/internal/models"
	"pet-matchmaker/pkg/registry"
)

type Kind string

const (
	KindText    Kind = "text"
	KindBoolean Kind = "boolean"
)

type Question struct {
	Key        string
	PromptText string
	Kind       Kind
}

// Script is the fixed, ordered interview. It is immutable once built.
type Script struct {
	questions []Question
	index     map[string]int
}

func defaultQuestions() []Question {
	return []Question{
		{Key: models.PrefPetType, Kind: KindText, PromptText: "Great, let's find your perfect companion! What type of pet are you most interested in? (dog, cat, rabbit, bird, or any)"},
		{Key: models.PrefLivingSpace, Kind: KindText, PromptText: "What's your living space like? (apartment, house with a yard, farm, ...)"},
		{Key: models.PrefActivityLevel, Kind: KindText, PromptText: "How active is your lifestyle? (low, moderate, or high)"},
		{Key: models.PrefExperience, Kind: KindText, PromptText: "How much experience do you have caring for pets? (first-time, some, or experienced)"},
		{Key: models.PrefTimeAvailable, Kind: KindText, PromptText: "How much time can you dedicate to a pet each day?"},
		{Key: models.PrefFamilySituation, Kind: KindText, PromptText: "Tell me about your household. Do you live alone, with a partner, or with children?"},
		{Key: models.PrefOtherPets, Kind: KindBoolean, PromptText: "Do you have any other pets at home? (yes/no)"},
		{Key: models.PrefSpecialNeeds, Kind: KindBoolean, PromptText: "Would you be open to adopting a pet with special needs? (yes/no)"},
		{Key: models.PrefBudget, Kind: KindText, PromptText: "What monthly budget do you have in mind for pet care?"},
		{Key: models.PrefAllergies, Kind: KindText, PromptText: "Does anyone in your home have pet allergies?"},
		{Key: models.PrefAdditionalInfo, Kind: KindText, PromptText: "Anything else I should know before I look for matches?"},
	}
}

func DefaultScript() *Script {
	s, err := NewScript(defaultQuestions())
	if err != nil {
		panic(err)
	}
	return s
}

func NewScript(questions []Question) (*Script, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("interview script needs at least one question")
	}
	s := &Script{
		questions: make([]Question, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		if q.Key == "" {
			return nil, fmt.Errorf("question %d has no key", i)
		}
		if _, dup := s.index[q.Key]; dup {
			return nil, fmt.Errorf("duplicate question key %q", q.Key)
		}
		if q.Kind == "" {
			q.Kind = KindText
		}
		s.questions[i] = q
		s.index[q.Key] = i
	}
	return s, nil
}

// LoadScript builds a script from an interview registry file.
func LoadScript(path string) (*Script, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load interview script: %w", err)
	}
	questions := make([]Question, 0, len(reg.Questions))
	for _, q := range reg.Questions {
		questions = append(questions, Question{
			Key:        strings.TrimSpace(q.Key),
			PromptText: q.PromptText,
			Kind:       Kind(q.Kind),
		})
	}
	return NewScript(questions)
}

func (s *Script) Len() int {
	return len(s.questions)
}

func (s *Script) At(step int) (Question, bool) {
	if step < 0 || step >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[step], true
}

func (s *Script) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

func (s *Script) Keys() []string {
	keys := make([]string, len(s.questions))
	for i, q := range s.questions {
		keys[i] = q.Key
	}
	return keys
}

// Export converts the script to its registry file form.
func (s *Script) Export(version string) *registry.InterviewRegistry {
	reg := &registry.InterviewRegistry{
		Version:   version,
		Questions: make([]registry.QuestionEntry, 0, len(s.questions)),
	}
	for _, q := range s.questions {
		reg.Questions = append(reg.Questions, registry.QuestionEntry{
			Key:        q.Key,
			PromptText: q.PromptText,
			Kind:       string(q.Kind),
		})
	}
	return reg
}
