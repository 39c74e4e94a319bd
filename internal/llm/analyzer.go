package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"allergyguard/internal/allergen"

	"go.uber.org/zap"
)

var ErrNoIngredients = errors.New("no ingredients provided")

const rawContentLimit = 500

// ParseError keeps a prefix of what the model actually said.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidResponse, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidResponse
}

func newParseError(reason, raw string) *ParseError {
	if len(raw) > rawContentLimit {
		raw = raw[:rawContentLimit]
	}
	return &ParseError{Reason: reason, Raw: raw}
}

type Highlights struct {
	Safe        []string `json:"safe"`
	Concerning  []string `json:"concerning"`
	Problematic []string `json:"problematic"`
}

// Analysis is the model's verdict on one ingredient list.
type Analysis struct {
	IsProblematic        bool               `json:"isProblematic"`
	DetectedAllergens    []string           `json:"detectedAllergens"`
	Analysis             string             `json:"analysis"`
	RiskLevel            allergen.RiskLevel `json:"riskLevel"`
	Recommendations      []string           `json:"recommendations"`
	IngredientHighlights Highlights         `json:"ingredientHighlights"`
}

// Analyzer turns completions into typed results.
type Analyzer struct {
	completer Completer
	log       *zap.Logger
}

func NewAnalyzer(completer Completer, log *zap.Logger) *Analyzer {
	return &Analyzer{completer: completer, log: log}
}

func (a *Analyzer) AnalyzeIngredients(ctx context.Context, ingredients string, familyAllergies []string) (*Analysis, error) {
	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		return nil, ErrNoIngredients
	}

	raw, err := a.completer.Complete(ctx, Request{
		System:      analysisSystemPrompt,
		Prompt:      BuildAnalysisPrompt(ingredients, familyAllergies),
		Temperature: 0.1,
		MaxTokens:   1000,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(CleanJSON(raw))
	if err != nil {
		a.log.Warn("unusable analysis reply", zap.Error(err))
		return nil, err
	}
	return analysis, nil
}

func parseAnalysis(content string) (*Analysis, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, newParseError("failed to parse AI response", content)
	}

	if _, ok := fields["isProblematic"]; !ok {
		return nil, newParseError("missing isProblematic", content)
	}
	if _, ok := fields["riskLevel"]; !ok {
		return nil, newParseError("missing riskLevel", content)
	}
	detected, ok := fields["detectedAllergens"]
	if !ok || !strings.HasPrefix(strings.TrimSpace(string(detected)), "[") {
		return nil, newParseError("detectedAllergens is not an array", content)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, newParseError("invalid response format from AI", content)
	}

	normalizeAnalysis(&analysis)
	return &analysis, nil
}

func normalizeAnalysis(a *Analysis) {
	a.DetectedAllergens = nonNil(a.DetectedAllergens)
	a.Recommendations = nonNil(a.Recommendations)
	a.IngredientHighlights.Safe = nonNil(a.IngredientHighlights.Safe)
	a.IngredientHighlights.Concerning = nonNil(a.IngredientHighlights.Concerning)
	a.IngredientHighlights.Problematic = nonNil(a.IngredientHighlights.Problematic)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
