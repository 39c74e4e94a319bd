// Package allergen holds the allergy vocabulary shared by scans and meal
// plans and the rules that match recorded allergies against ingredients.
package allergen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSeverity = errors.New("unknown allergy severity")

// Severity is ordered: a larger value is a worse reaction.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
	SeverityLifeThreatening
)

var severityNames = map[Severity]string{
	SeverityNone:            "none",
	SeverityMild:            "mild",
	SeverityModerate:        "moderate",
	SeveritySevere:          "severe",
	SeverityLifeThreatening: "life_threatening",
}

// ParseSeverity accepts "Life-Threatening", "LIFE_THREATENING", "life threatening"
// and so on. An empty value means moderate.
func ParseSeverity(s string) (Severity, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)

	switch key {
	case "":
		return SeverityModerate, nil
	case "mild":
		return SeverityMild, nil
	case "moderate":
		return SeverityModerate, nil
	case "severe":
		return SeveritySevere, nil
	case "life_threatening":
		return SeverityLifeThreatening, nil
	}
	return SeverityNone, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "none"
}

// Column is the upper-case form stored in the database.
func (s Severity) Column() string {
	return strings.ToUpper(s.String())
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == severityNames[SeverityNone] {
		*s = SeverityNone
		return nil
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RiskLevel is the overall verdict of a scan, ordered like Severity.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskNames = [...]string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

// ParseRiskLevel never fails: anything unrecognised is LOW.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MEDIUM":
		return RiskMedium
	case "HIGH":
		return RiskHigh
	case "CRITICAL":
		return RiskCritical
	}
	return RiskLow
}

func (r RiskLevel) String() string {
	if r < RiskLow || r > RiskCritical {
		return riskNames[RiskLow]
	}
	return riskNames[r]
}

func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ParseRiskLevel(raw)
	return nil
}
