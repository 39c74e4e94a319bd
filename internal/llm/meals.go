package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

var difficulties = []string{"easy", "medium", "hard"}

// MealSuggestion is one normalized idea from the model.
type MealSuggestion struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Ingredients      []string `json:"ingredients"`
	PrepTime         int      `json:"prepTime"`
	CookTime         int      `json:"cookTime"`
	Difficulty       string   `json:"difficulty"`
	Cuisine          string   `json:"cuisine"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	AllergenWarnings []string `json:"allergenWarnings"`
	SafetyNotes      string   `json:"safetyNotes"`
}

// SuggestMeals asks for SuggestionCount(mealTypes) meals; mealTypes must not be empty.
func (a *Analyzer) SuggestMeals(ctx context.Context, prompt string, mealTypes []string) ([]MealSuggestion, error) {
	if len(mealTypes) == 0 {
		return nil, fmt.Errorf("suggest meals: no meal types")
	}

	raw, err := a.completer.Complete(ctx, Request{
		System:      mealSystemPrompt,
		Prompt:      BuildMealPrompt(prompt, mealTypes),
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, err
	}

	content := CleanJSON(raw)
	suggestions, err := parseSuggestions(content, mealTypes)
	if err != nil {
		a.log.Warn("unusable meal suggestion reply", zap.Error(err), zap.String("raw", truncate(raw)))
		return nil, err
	}
	return suggestions, nil
}

func parseSuggestions(content string, mealTypes []string) ([]MealSuggestion, error) {
	var decoded any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return nil, newParseError("failed to parse AI response as JSON", content)
	}

	var items []any
	switch v := decoded.(type) {
	case []any:
		items = v
	default:
		items = []any{v}
	}

	out := make([]MealSuggestion, 0, len(items))
	for i, item := range items {
		fields, _ := item.(map[string]any)
		out = append(out, normalizeSuggestion(fields, i, mealTypes))
	}
	return out, nil
}

// normalizeSuggestion applies a default to every missing or mistyped field.
func normalizeSuggestion(m map[string]any, index int, mealTypes []string) MealSuggestion {
	s := MealSuggestion{
		Name:             stringOr(m["name"], fmt.Sprintf("AI Meal %d", index+1)),
		Type:             mealTypes[0],
		Ingredients:      stringsOr(m["ingredients"], []string{}),
		PrepTime:         numberOr(m["prepTime"], 10),
		CookTime:         numberOr(m["cookTime"], 15),
		Difficulty:       "easy",
		Cuisine:          stringOr(m["cuisine"], "American"),
		Description:      stringOr(m["description"], "Delicious family-friendly meal"),
		Tags:             stringsOr(m["tags"], []string{"family-friendly"}),
		AllergenWarnings: stringsOr(m["allergenWarnings"], []string{}),
		SafetyNotes:      stringOr(m["safetyNotes"], "Reviewed for family safety"),
	}

	if t, ok := m["type"].(string); ok && slices.Contains(mealTypes, t) {
		s.Type = t
	}
	if d, ok := m["difficulty"].(string); ok && slices.Contains(difficulties, d) {
		s.Difficulty = d
	}
	return s
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func numberOr(v any, def int) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return def
}

// stringsOr keeps the string elements of an array; a non-array yields def.
func stringsOr(v any, def []string) []string {
	list, ok := v.([]any)
	if !ok {
		return def
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string) string {
	if len(s) > rawContentLimit {
		return s[:rawContentLimit]
	}
	return s
}
