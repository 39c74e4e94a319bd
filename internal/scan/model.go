package scan

import (
	"time"

	"allergyguard/internal/allergen"
	"allergyguard/internal/llm"
)

const (
	SourceText  = "text"
	SourceLabel = "label"
)

// Metadata is stored as JSON next to the scan row.
type Metadata struct {
	FamilyAllergies      []string                  `json:"familyAllergies"`
	IngredientHighlights llm.Highlights            `json:"ingredientHighlights"`
	Matches              []allergen.Match          `json:"matches"`
	AffectedMembers      []allergen.AffectedMember `json:"affectedMembers"`
	AIRiskLevel          allergen.RiskLevel        `json:"aiRiskLevel"`
	Source               string                    `json:"source"`
	Timestamp            time.Time                 `json:"timestamp"`
}

// Scan is one persisted history entry.
type Scan struct {
	ID                string             `json:"id"`
	UserID            string             `json:"-"`
	Ingredients       string             `json:"ingredients"`
	Analysis          string             `json:"analysis"`
	DetectedAllergens []string           `json:"detectedAllergens"`
	RiskLevel         allergen.RiskLevel `json:"riskLevel"`
	IsProblematic     bool               `json:"isProblematic"`
	Recommendations   []string           `json:"recommendations"`
	Metadata          Metadata           `json:"metadata"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// Report is what the analyze endpoint returns under "analysis".
type Report struct {
	llm.Analysis
	ScanDate               time.Time                 `json:"scanDate"`
	FamilyAllergiesChecked []string                  `json:"familyAllergiesChecked"`
	AffectedMembers        []allergen.AffectedMember `json:"affectedMembers"`
	WorstSeverity          allergen.Severity         `json:"worstSeverity"`
	AIRiskLevel            allergen.RiskLevel        `json:"aiRiskLevel"`
}

type Result struct {
	ScanID   string `json:"scanId"`
	Analysis Report `json:"analysis"`
}
