package llm

import (
	"context"
	"errors"
	"testing"

	"allergyguard/internal/allergen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validAnalysis = `{
  "isProblematic": true,
  "detectedAllergens": ["milk", "soy lecithin"],
  "analysis": "Contains milk solids.",
  "riskLevel": "high",
  "recommendations": ["Avoid for milk-allergic members"],
  "ingredientHighlights": {"safe": ["sugar"], "concerning": [], "problematic": ["milk solids"]}
}`

func TestAnalyzeIngredients(t *testing.T) {
	fake := &fakeCompleter{reply: "```json\n" + validAnalysis + "\n```"}
	analyzer := NewAnalyzer(fake, zap.NewNop())

	analysis, err := analyzer.AnalyzeIngredients(context.Background(), "  sugar, milk solids ", []string{"milk"})
	require.NoError(t, err)

	assert.True(t, analysis.IsProblematic)
	assert.Equal(t, allergen.RiskHigh, analysis.RiskLevel)
	assert.Equal(t, []string{"milk", "soy lecithin"}, analysis.DetectedAllergens)
	assert.Equal(t, []string{"milk solids"}, analysis.IngredientHighlights.Problematic)
	assert.NotNil(t, analysis.IngredientHighlights.Concerning)

	assert.Equal(t, float32(0.1), fake.last.Temperature)
	assert.Equal(t, 1000, fake.last.MaxTokens)
	assert.True(t, fake.last.JSON)
	assert.Contains(t, fake.last.Prompt, `"sugar, milk solids"`)
	assert.Contains(t, fake.last.Prompt, "FAMILY ALLERGIES TO CHECK FOR:\nmilk\n")
}

func TestAnalyzeIngredientsEmpty(t *testing.T) {
	fake := &fakeCompleter{}
	analyzer := NewAnalyzer(fake, zap.NewNop())

	_, err := analyzer.AnalyzeIngredients(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrNoIngredients)
	assert.Zero(t, fake.calls)
}

func TestAnalyzeIngredientsInvalidReplies(t *testing.T) {
	cases := map[string]string{
		"not json":          "I think it is fine",
		"missing risk":      `{"isProblematic": false, "detectedAllergens": []}`,
		"missing flag":      `{"riskLevel": "LOW", "detectedAllergens": []}`,
		"detected not list": `{"isProblematic": false, "riskLevel": "LOW", "detectedAllergens": "none"}`,
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			analyzer := NewAnalyzer(&fakeCompleter{reply: reply}, zap.NewNop())
			_, err := analyzer.AnalyzeIngredients(context.Background(), "water", nil)
			assert.ErrorIs(t, err, ErrInvalidResponse)

			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestAnalyzeIngredientsProviderError(t *testing.T) {
	analyzer := NewAnalyzer(Unconfigured{}, zap.NewNop())

	_, err := analyzer.AnalyzeIngredients(context.Background(), "water", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuildAnalysisPromptFallsBackToCommonAllergens(t *testing.T) {
	prompt := BuildAnalysisPrompt("water", nil)
	assert.Contains(t, prompt, "common allergens (milk, eggs, fish, shellfish, tree nuts, peanuts, wheat, soybeans, sesame)")
}

func TestParseErrorTruncatesRaw(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	err := newParseError("bad", string(long))
	assert.Len(t, err.Raw, rawContentLimit)
}
