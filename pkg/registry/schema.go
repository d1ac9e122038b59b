package registry

// InterviewRegistry is the on-disk form of a preference interview script.
type InterviewRegistry struct {
	Version     string          `json:"version"`
	LastUpdated string          `json:"lastUpdated"`
	Questions   []QuestionEntry `json:"questions"`
}

type QuestionEntry struct {
	Key        string `json:"key"`
	PromptText string `json:"promptText"`
	// Kind is "text" (default) or "boolean".
	Kind string `json:"kind,omitempty"`
}
