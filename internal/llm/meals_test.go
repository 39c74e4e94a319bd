package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSuggestionCount(t *testing.T) {
	assert.Equal(t, 2, SuggestionCount([]string{"dinner"}))
	assert.Equal(t, 6, SuggestionCount([]string{"breakfast", "lunch", "dinner", "snack"}))
	assert.Equal(t, 0, SuggestionCount(nil))
}

func TestSuggestMealsNormalizes(t *testing.T) {
	fake := &fakeCompleter{reply: "```\n" + `[
	  {"name": "Veggie Stir Fry", "type": "lunch", "ingredients": ["rice", "broccoli", 3],
	   "prepTime": 12, "cookTime": "soon", "difficulty": "medium",
	   "tags": "quick"},
	  {"type": "brunch", "difficulty": "impossible"}
	]` + "\n```"}
	analyzer := NewAnalyzer(fake, zap.NewNop())

	out, err := analyzer.SuggestMeals(context.Background(), "Plan lunch and dinner", []string{"dinner", "lunch"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, "Veggie Stir Fry", first.Name)
	assert.Equal(t, "lunch", first.Type)
	assert.Equal(t, []string{"rice", "broccoli"}, first.Ingredients)
	assert.Equal(t, 12, first.PrepTime)
	assert.Equal(t, 15, first.CookTime)
	assert.Equal(t, "medium", first.Difficulty)
	assert.Equal(t, []string{"family-friendly"}, first.Tags)

	second := out[1]
	assert.Equal(t, "AI Meal 2", second.Name)
	assert.Equal(t, "dinner", second.Type)
	assert.Equal(t, "easy", second.Difficulty)
	assert.Equal(t, "American", second.Cuisine)
	assert.Equal(t, "Delicious family-friendly meal", second.Description)
	assert.Equal(t, "Reviewed for family safety", second.SafetyNotes)
	assert.Equal(t, []string{}, second.Ingredients)
	assert.Equal(t, []string{}, second.AllergenWarnings)

	assert.Equal(t, float32(0.7), fake.last.Temperature)
	assert.Equal(t, 2000, fake.last.MaxTokens)
	assert.Contains(t, fake.last.Prompt, "Plan lunch and dinner")
	assert.Contains(t, fake.last.Prompt, "Generate exactly 4 meal suggestions")
}

func TestSuggestMealsWrapsSingleObject(t *testing.T) {
	fake := &fakeCompleter{reply: `Here you go: {"name": "Pancakes", "type": "breakfast"}`}
	analyzer := NewAnalyzer(fake, zap.NewNop())

	out, err := analyzer.SuggestMeals(context.Background(), "breakfast please", []string{"breakfast"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Pancakes", out[0].Name)
}

func TestSuggestMealsParseFailure(t *testing.T) {
	analyzer := NewAnalyzer(&fakeCompleter{reply: "no meals today"}, zap.NewNop())

	_, err := analyzer.SuggestMeals(context.Background(), "x", []string{"dinner"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestSuggestMealsRequiresMealTypes(t *testing.T) {
	fake := &fakeCompleter{}
	analyzer := NewAnalyzer(fake, zap.NewNop())

	_, err := analyzer.SuggestMeals(context.Background(), "x", nil)
	assert.Error(t, err)
	assert.Zero(t, fake.calls)
}
