package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"allergyguard/internal/allergen"
	"allergyguard/internal/llm"

	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

var ErrIngredientsRequired = errors.New("ingredients are required")

// AllergySource is satisfied by *family.Service.
type AllergySource interface {
	Allergies(ctx context.Context, userID string) ([]allergen.MemberAllergy, error)
}

// IngredientAnalyzer is satisfied by *llm.Analyzer.
type IngredientAnalyzer interface {
	AnalyzeIngredients(ctx context.Context, ingredients string, familyAllergies []string) (*llm.Analysis, error)
}

type Service struct {
	repo     Repository
	family   AllergySource
	analyzer IngredientAnalyzer
	log      *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, family AllergySource, analyzer IngredientAnalyzer, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		family:   family,
		analyzer: analyzer,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Analyze runs the AI check, cross-references the family's own allergies,
// and records the result in scan history.
func (s *Service) Analyze(ctx context.Context, userID, ingredients, source string) (*Result, error) {
	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		return nil, ErrIngredientsRequired
	}

	memberAllergies, err := s.family.Allergies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load family allergies: %w", err)
	}

	checked := allergen.Names(memberAllergies)
	if len(checked) == 0 {
		checked = append([]string{}, allergen.CommonAllergens...)
	}

	analysis, err := s.analyzer.AnalyzeIngredients(ctx, ingredients, checked)
	if err != nil {
		return nil, err
	}

	report := allergen.CrossReference(analysis.DetectedAllergens, memberAllergies)
	aiRisk := analysis.RiskLevel
	analysis.RiskLevel = allergen.Escalate(aiRisk, report)
	if report.HasMatches() {
		analysis.IsProblematic = true
	}

	if source == "" {
		source = SourceText
	}

	record := &Scan{
		UserID:            userID,
		Ingredients:       ingredients,
		Analysis:          analysis.Analysis,
		DetectedAllergens: analysis.DetectedAllergens,
		RiskLevel:         analysis.RiskLevel,
		IsProblematic:     analysis.IsProblematic,
		Recommendations:   analysis.Recommendations,
		Metadata: Metadata{
			FamilyAllergies:      checked,
			IngredientHighlights: analysis.IngredientHighlights,
			Matches:              report.Matches,
			AffectedMembers:      report.Affected,
			AIRiskLevel:          aiRisk,
			Source:               source,
			Timestamp:            s.now(),
		},
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save scan: %w", err)
	}

	if aiRisk != analysis.RiskLevel {
		s.log.Info("risk escalated by family allergies",
			zap.String("scan_id", record.ID),
			zap.Stringer("ai_risk", aiRisk),
			zap.Stringer("risk", analysis.RiskLevel),
			zap.Int("matches", len(report.Matches)),
		)
	}

	return &Result{
		ScanID: record.ID,
		Analysis: Report{
			Analysis:               *analysis,
			ScanDate:               record.CreatedAt,
			FamilyAllergiesChecked: checked,
			AffectedMembers:        report.Affected,
			WorstSeverity:          report.WorstSeverity,
			AIRiskLevel:            aiRisk,
		},
	}, nil
}

// AnalyzeLabel adapts Analyze for the OCR pipeline.
func (s *Service) AnalyzeLabel(ctx context.Context, userID, ingredients string) (string, error) {
	result, err := s.Analyze(ctx, userID, ingredients, SourceLabel)
	if err != nil {
		return "", err
	}
	return result.ScanID, nil
}

func (s *Service) History(ctx context.Context, userID string, limit int) ([]Scan, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Scan, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
