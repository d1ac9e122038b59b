package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func LoadRegistry(path string) (*InterviewRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*InterviewRegistry, error) {
	var reg InterviewRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse interview registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *InterviewRegistry) Validate() error {
	if len(r.Questions) == 0 {
		return fmt.Errorf("interview registry has no questions")
	}
	seen := make(map[string]bool, len(r.Questions))
	for i, q := range r.Questions {
		key := strings.TrimSpace(q.Key)
		if key == "" {
			return fmt.Errorf("question %d has no key", i)
		}
		if strings.TrimSpace(q.PromptText) == "" {
			return fmt.Errorf("question %q has no prompt text", key)
		}
		if seen[key] {
			return fmt.Errorf("duplicate question key %q", key)
		}
		switch q.Kind {
		case "", "text", "boolean":
		default:
			return fmt.Errorf("question %q has unknown kind %q", key, q.Kind)
		}
		seen[key] = true
	}
	return nil
}
