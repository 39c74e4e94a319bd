package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"allergyguard/internal/allergen"
	"allergyguard/internal/app"
	"allergyguard/internal/llm"
	"allergyguard/internal/ocr"

	"github.com/spf13/cobra"
)

var (
	analyzeText      string
	analyzeAllergies []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [<image>]",
	Short: "Analyze ingredient text or a label photo against allergies",
	Long: `Analyze ingredients with the configured AI provider, then cross-reference
the detected allergens with the given allergies.

Allergies are written as allergen[:severity], for example:
  labelscan analyze --text "wheat flour, peanuts" --allergy peanuts:life-threatening`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Ingredient list to analyze")
	analyzeCmd.Flags().StringArrayVarP(&analyzeAllergies, "allergy", "a", nil, "Allergy as allergen[:severity] (repeatable)")
}

type analyzeOutput struct {
	Ingredients     string                    `json:"ingredients"`
	Analysis        *llm.Analysis             `json:"analysis"`
	AIRiskLevel     allergen.RiskLevel        `json:"aiRiskLevel"`
	Matches         []allergen.Match          `json:"matches"`
	AffectedMembers []allergen.AffectedMember `json:"affectedMembers"`
	WorstSeverity   allergen.Severity         `json:"worstSeverity"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeText == "" && len(args) == 0 {
		return errors.New("pass --text or an image path")
	}

	allergies, err := parseAllergies(analyzeAllergies)
	if err != nil {
		return err
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	ingredients := analyzeText
	if ingredients == "" {
		_, ingredients, err = readLabel(ctx, ocr.NewTesseract(cfg.OCRBinary), args[0])
		if err != nil {
			return err
		}
		if ingredients == "" {
			return errors.New("no ingredient text found")
		}
	}

	completer, err := app.NewCompleter(ctx, cfg, log)
	if err != nil {
		return err
	}
	analyzer := llm.NewAnalyzer(completer, log)

	checked := allergen.Names(allergies)
	if len(checked) == 0 {
		checked = allergen.CommonAllergens
	}

	analysis, err := analyzer.AnalyzeIngredients(ctx, ingredients, checked)
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), ingredients, analysis, allergies)
}

func writeReport(w io.Writer, ingredients string, analysis *llm.Analysis, allergies []allergen.MemberAllergy) error {
	report := allergen.CrossReference(analysis.DetectedAllergens, allergies)
	out := analyzeOutput{
		Ingredients:     ingredients,
		AIRiskLevel:     analysis.RiskLevel,
		Matches:         report.Matches,
		AffectedMembers: report.Affected,
		WorstSeverity:   report.WorstSeverity,
	}

	analysis.RiskLevel = allergen.Escalate(analysis.RiskLevel, report)
	if report.HasMatches() {
		analysis.IsProblematic = true
	}
	out.Analysis = analysis

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// parseAllergies reads allergen[:severity]; severity defaults to moderate.
func parseAllergies(values []string) ([]allergen.MemberAllergy, error) {
	out := make([]allergen.MemberAllergy, 0, len(values))
	for _, v := range values {
		name, sev, _ := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("allergy %q: missing allergen", v)
		}

		severity, err := allergen.ParseSeverity(sev)
		if err != nil {
			return nil, fmt.Errorf("allergy %q: %w", v, err)
		}

		out = append(out, allergen.MemberAllergy{
			MemberID:   "cli",
			MemberName: "you",
			Allergen:   name,
			Severity:   severity,
		})
	}
	return out, nil
}
