package models

import "fmt"

// Preference keys elicited from adopters.
const (
	PrefPetType         = "petType"
	PrefLivingSpace     = "livingSpace"
	PrefActivityLevel   = "activityLevel"
	PrefExperience      = "experience"
	PrefTimeAvailable   = "timeAvailable"
	PrefFamilySituation = "familySituation"
	PrefOtherPets       = "otherPets"
	PrefSpecialNeeds    = "specialNeeds"
	PrefBudget          = "budget"
	PrefAllergies       = "allergies"
	PrefAdditionalInfo  = "additionalInfo"
)

// UserPreferences maps a preference key to a string or bool answer.
type UserPreferences map[string]interface{}

func (p UserPreferences) Clone() UserPreferences {
	out := make(UserPreferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Text returns the answer for key as display text, or "" when unanswered.
func (p UserPreferences) Text(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(t)
	}
}

// Bool reports the boolean answer for key and whether one was recorded.
func (p UserPreferences) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}
