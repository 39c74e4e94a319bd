package llm

import (
	"fmt"
	"strings"

	"allergyguard/internal/allergen"
)

const analysisSystemPrompt = "You are a professional allergen detection expert who helps families stay safe. Always respond with valid JSON only."

const mealSystemPrompt = "You are a family nutrition expert specializing in allergy-safe meal planning. You must respond with valid JSON arrays only. Never include markdown formatting or explanations - just pure JSON."

func BuildAnalysisPrompt(ingredients string, familyAllergies []string) string {
	allergyList := strings.Join(familyAllergies, ", ")
	if len(familyAllergies) == 0 {
		allergyList = "common allergens (" + strings.Join(allergen.CommonAllergens, ", ") + ")"
	}

	return `You are an expert food safety analyst specializing in allergen detection.

INGREDIENTS TO ANALYZE:
"` + ingredients + `"

FAMILY ALLERGIES TO CHECK FOR:
` + allergyList + `

Please analyze these ingredients for potential allergen risks and provide a comprehensive safety assessment.

Return your analysis as a JSON object with this exact structure:
{
  "isProblematic": boolean,
  "detectedAllergens": ["allergen1", "allergen2"],
  "analysis": "detailed explanation of findings",
  "riskLevel": "LOW" | "MEDIUM" | "HIGH" | "CRITICAL",
  "recommendations": ["recommendation1", "recommendation2"],
  "ingredientHighlights": {
    "safe": ["safe ingredient 1", "safe ingredient 2"],
    "concerning": ["may contain traces", "processed in facility"],
    "problematic": ["direct allergen", "contains allergen"]
  }
}

Risk Level Guidelines:
- LOW: No detected allergens, safe for consumption
- MEDIUM: Potential cross-contamination or "may contain" warnings
- HIGH: Contains allergens but not primary family allergies
- CRITICAL: Contains family-specific allergens, DO NOT CONSUME

Be thorough but family-friendly in your language. Focus on clear, actionable guidance for parents protecting their children.`
}

// SuggestionCount is how many meals are requested for the given meal types.
func SuggestionCount(mealTypes []string) int {
	return min(len(mealTypes)*2, 6)
}

func BuildMealPrompt(prompt string, mealTypes []string) string {
	return fmt.Sprintf(`
%s

IMPORTANT: You must respond with ONLY a valid JSON array. No other text, explanations, or markdown formatting.

Example format:
[
  {
    "name": "Grilled Chicken with Vegetables",
    "type": "dinner",
    "ingredients": ["chicken breast", "broccoli", "carrots", "olive oil", "garlic"],
    "prepTime": 15,
    "cookTime": 20,
    "difficulty": "easy",
    "cuisine": "American",
    "description": "Healthy grilled chicken with roasted vegetables",
    "tags": ["gluten-free", "high-protein"],
    "allergenWarnings": [],
    "safetyNotes": "Safe for all listed family members"
  }
]

Generate exactly %d meal suggestions following this format.
`, prompt, SuggestionCount(mealTypes))
}
