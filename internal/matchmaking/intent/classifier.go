package intent

import "strings"

// DefaultMatchTriggers signal that the user wants to be matched with a pet.
var DefaultMatchTriggers = []string{
	"match",
	"recommend",
	"best pet",
	"find me a pet",
	"suggest a pet",
	"pet for me",
}

// DefaultStopTriggers end a preference interview early.
var DefaultStopTriggers = []string{
	"stop",
	"show pets",
	"show me pets",
	"done",
	"enough",
	"that's all",
	"that is all",
}

// Classifier reports whether a message contains any of its phrases. Matching
// is a case-insensitive substring test, so multi-word phrases must appear
// contiguously.
type Classifier struct {
	phrases []string
}

func New(phrases ...string) *Classifier {
	c := &Classifier{phrases: make([]string, 0, len(phrases))}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			c.phrases = append(c.phrases, p)
		}
	}
	return c
}

// NewMatchIntent returns the match-intent classifier, extended with extra phrases.
func NewMatchIntent(extra ...string) *Classifier {
	return New(append(append([]string{}, DefaultMatchTriggers...), extra...)...)
}

// NewStopIntent returns the stop-phrase classifier, extended with extra phrases.
func NewStopIntent(extra ...string) *Classifier {
	return New(append(append([]string{}, DefaultStopTriggers...), extra...)...)
}

func (c *Classifier) Detect(message string) bool {
	lower := strings.ToLower(message)
	for _, p := range c.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
