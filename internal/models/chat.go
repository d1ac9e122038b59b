package models

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

type TranscriptEntry struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// AppendTurn returns a new transcript with one user and one assistant entry
// appended; prior is never modified.
func AppendTurn(prior []TranscriptEntry, userText, assistantText string) []TranscriptEntry {
	out := make([]TranscriptEntry, 0, len(prior)+2)
	out = append(out, prior...)
	return append(out,
		TranscriptEntry{Speaker: SpeakerUser, Text: userText},
		TranscriptEntry{Speaker: SpeakerAssistant, Text: assistantText},
	)
}
