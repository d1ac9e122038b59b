package preferences

import (
	"fmt"
	"strings"

	"pet-matchmaker/internal/models"
)

// ParseBoolean accepts "yes", "y" and "true" in any case; everything else is false.
func ParseBoolean(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y", "true":
		return true
	default:
		return false
	}
}

// Record stores the trimmed answer to the question at step and returns its
// key. Empty answers are stored as empty strings.
func (s *Script) Record(prefs models.UserPreferences, step int, answer string) (string, error) {
	q, ok := s.At(step)
	if !ok {
		return "", fmt.Errorf("step %d is outside the %d-question script", step, s.Len())
	}
	prefs[q.Key] = q.value(strings.TrimSpace(answer))
	return q.Key, nil
}

func (q Question) value(answer string) interface{} {
	if q.Kind == KindBoolean {
		return ParseBoolean(answer)
	}
	return answer
}

// Normalize converts a submitted preference object to UserPreferences. Keys
// outside the script are dropped and returned so callers can log them.
func (s *Script) Normalize(raw map[string]interface{}) (models.UserPreferences, []string) {
	prefs := make(models.UserPreferences, len(raw))
	var dropped []string
	for key, v := range raw {
		idx, ok := s.index[key]
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		if v == nil {
			continue
		}
		q := s.questions[idx]
		switch t := v.(type) {
		case bool:
			if q.Kind == KindBoolean {
				prefs[key] = t
			} else if t {
				prefs[key] = "yes"
			} else {
				prefs[key] = "no"
			}
		case string:
			prefs[key] = q.value(strings.TrimSpace(t))
		default:
			prefs[key] = q.value(strings.TrimSpace(fmt.Sprint(t)))
		}
	}
	return prefs, dropped
}
