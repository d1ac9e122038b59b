package matcher

import (
	"encoding/json"
	"fmt"
	"strings"

	"pet-matchmaker/internal/models"
)

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func buildMatchingPrompt(prefs models.UserPreferences, candidates []models.CandidatePet, minScore int) string {
	var parts []string

	parts = append(parts, "You are an expert pet matchmaker AI. Analyze the user's preferences and lifestyle to match them with suitable pets.")
	parts = append(parts, "\nUser Preferences:")
	parts = append(parts, fmt.Sprintf("- Living Space: %s", prefs.Text(models.PrefLivingSpace)))
	parts = append(parts, fmt.Sprintf("- Activity Level: %s", prefs.Text(models.PrefActivityLevel)))
	parts = append(parts, fmt.Sprintf("- Experience: %s", prefs.Text(models.PrefExperience)))
	parts = append(parts, fmt.Sprintf("- Time Available: %s", prefs.Text(models.PrefTimeAvailable)))
	parts = append(parts, fmt.Sprintf("- Family Situation: %s", prefs.Text(models.PrefFamilySituation)))
	parts = append(parts, fmt.Sprintf("- Pet Type Preference: %s", orDefault(prefs.Text(models.PrefPetType), "any")))
	parts = append(parts, fmt.Sprintf("- Budget: %s", orDefault(prefs.Text(models.PrefBudget), "not specified")))
	parts = append(parts, fmt.Sprintf("- Allergies: %s", orDefault(prefs.Text(models.PrefAllergies), "none")))
	if _, ok := prefs[models.PrefOtherPets]; ok {
		parts = append(parts, fmt.Sprintf("- Other Pets: %s", prefs.Text(models.PrefOtherPets)))
	}
	if _, ok := prefs[models.PrefSpecialNeeds]; ok {
		parts = append(parts, fmt.Sprintf("- Special Needs OK: %s", prefs.Text(models.PrefSpecialNeeds)))
	}
	if info := prefs.Text(models.PrefAdditionalInfo); strings.TrimSpace(info) != "" {
		parts = append(parts, fmt.Sprintf("- Additional Info: %s", info))
	}

	candidateJSON, _ := json.MarshalIndent(candidates, "", "  ")
	parts = append(parts, "\nAvailable Pets:")
	parts = append(parts, string(candidateJSON))

	parts = append(parts, "\nAnalyze each pet and provide a compatibility score (1-100) with detailed reasoning. Consider:")
	parts = append(parts, "1. Living space compatibility")
	parts = append(parts, "2. Exercise and activity needs")
	parts = append(parts, "3. Care requirements vs user experience")
	parts = append(parts, "4. Time commitment")
	parts = append(parts, "5. Personality match")
	parts = append(parts, "6. Special needs or considerations")

	parts = append(parts, "\nReturn a JSON array of matches with this exact format:")
	parts = append(parts, `[
  {
    "petId": number,
    "matchScore": number (1-100),
    "reasoning": "Detailed explanation of why this pet is a good/poor match",
    "careAdvice": ["tip1", "tip2", "tip3"] (3-5 specific care tips for this pet)
  }
]`)
	parts = append(parts, fmt.Sprintf("\nOnly include pets with a match score of %d or higher. Sort by match score descending.", minScore))

	return strings.Join(parts, "\n")
}

func buildChatPrompt(message string, history []models.TranscriptEntry) string {
	if history == nil {
		history = []models.TranscriptEntry{}
	}
	historyJSON, _ := json.Marshal(history)

	var parts []string
	parts = append(parts, "You are a friendly AI assistant for FurryFriends, a pet adoption website.")
	parts = append(parts, "You help users find their perfect pet companions by asking about their lifestyle, preferences, and providing advice.")
	parts = append(parts, "Be warm, encouraging, and helpful. Focus on pet adoption, care, and matching.")
	parts = append(parts, fmt.Sprintf("\nChat history: %s", historyJSON))
	parts = append(parts, fmt.Sprintf("\nUser message: %s", message))
	parts = append(parts, "\nRespond helpfully and ask relevant follow-up questions if needed.")

	return strings.Join(parts, "\n")
}

func buildCareAdvicePrompt(petType, specificNeeds string) string {
	subject := petType
	if strings.TrimSpace(specificNeeds) != "" {
		subject = fmt.Sprintf("%s with these specific needs: %s", petType, specificNeeds)
	}
	return fmt.Sprintf("Generate 5-7 specific, actionable pet care tips for a %s.\n\n"+
		"Return as a JSON array of strings. Each tip should be practical and helpful for new pet owners.", subject)
}

// stripFences removes markdown code fences around a JSON payload.
func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
