package recommend

import (
	"fmt"

	"github.com/starford/sprout/internal/models"
)

// Suggestion counts requested from the generation service.
const (
	ProfileSuggestions = 15
	SimilarSuggestions = 15
	SearchSuggestions  = 12
)

const plantDetailsList = `For each plant, provide:
1. Common name
2. Scientific name (in binomial nomenclature)
3. Key benefits
4. Light requirements
5. Watering needs
6. Humidity preferences
7. Temperature range`

const jsonOnlyInstruction = `Return ONLY a JSON array of objects with these properties: name, scientificName, benefits, light, water, humidity, temperature. Do not include any markdown formatting or additional text.`

func profilePrompt(p models.PreferenceProfile) string {
	return fmt.Sprintf(`Based on these preferences:
- Experience level: %s
- Light conditions: %s
- Available space: %s
- Purpose: %s

Suggest %d indoor plants that would be suitable. %s
%s`, p.Experience, p.Light, p.Space, p.Purpose, ProfileSuggestions, plantDetailsList, jsonOnlyInstruction)
}

func similarPrompt(seed *models.Plant) string {
	seedLine := ""
	if seed != nil {
		seedLine = fmt.Sprintf("- %s (%s): %s", seed.Name, seed.ScientificName, seed.Benefits.String())
	}
	return fmt.Sprintf(`Based on this plant in my collection:
%s

Suggest %d different indoor plants that are similar to this plant but NOT the same plant. Consider:
1. Similar care requirements (light, water, humidity)
2. Similar benefits (air purification, aesthetics, etc.)
3. Similar appearance (size, leaf shape, growth pattern)

IMPORTANT: Do NOT suggest the same plant or varieties of the same plant. Each suggestion should be a completely different species.

%s

%s`, seedLine, SimilarSuggestions, plantDetailsList, jsonOnlyInstruction)
}

func searchPrompt(query string) string {
	return fmt.Sprintf(`Based on this description: "%s", suggest %d indoor plants that would be suitable. %s
%s`, query, SearchSuggestions, plantDetailsList, jsonOnlyInstruction)
}
