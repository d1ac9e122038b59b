package api

import "pet-matchmaker/internal/common/validation"

const transcriptSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["speaker", "text"],
    "properties": {
      "speaker": {"enum": ["user", "assistant"]},
      "text": {"type": "string"}
    }
  }
}`

var chatRequestSchema = validation.MustCompile("chat-request", `{
  "type": "object",
  "required": ["kind"],
  "properties": {
    "kind": {"enum": ["chat", "submitPreferences"]},
    "text": {"type": "string"},
    "preferences": {"type": "object"},
    "transcript": `+transcriptSchema+`
  },
  "oneOf": [
    {"properties": {"kind": {"enum": ["chat"]}}, "required": ["text"]},
    {"properties": {"kind": {"enum": ["submitPreferences"]}}, "required": ["preferences"]}
  ]
}`)

var matchRequestSchema = validation.MustCompile("match-request", `{
  "type": "object",
  "required": ["userPreferences"],
  "properties": {
    "userPreferences": {"type": "object"}
  }
}`)

var careAdviceRequestSchema = validation.MustCompile("care-advice-request", `{
  "type": "object",
  "required": ["petType"],
  "properties": {
    "petType": {"type": "string", "minLength": 1},
    "specificNeeds": {"type": "string"}
  }
}`)
