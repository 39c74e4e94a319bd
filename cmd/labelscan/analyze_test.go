package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"allergyguard/internal/allergen"
	"allergyguard/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllergies(t *testing.T) {
	got, err := parseAllergies([]string{"peanuts:life-threatening", " milk "})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, allergen.SeverityLifeThreatening, got[0].Severity)
	assert.Equal(t, "milk", got[1].Allergen)
	assert.Equal(t, allergen.SeverityModerate, got[1].Severity)

	_, err = parseAllergies([]string{":severe"})
	assert.Error(t, err)

	_, err = parseAllergies([]string{"eggs:sometimes"})
	assert.ErrorIs(t, err, allergen.ErrUnknownSeverity)
}

func TestWriteReportEscalates(t *testing.T) {
	allergies, err := parseAllergies([]string{"peanuts:severe", "milk:mild"})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = writeReport(&buf, "peanut butter, milk", &llm.Analysis{
		DetectedAllergens: []string{"peanuts", "milk"},
		RiskLevel:         allergen.RiskMedium,
	}, allergies)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "MEDIUM", out["aiRiskLevel"])
	assert.Equal(t, "severe", out["worstSeverity"])

	analysis := out["analysis"].(map[string]any)
	assert.Equal(t, "CRITICAL", analysis["riskLevel"])
	assert.Equal(t, true, analysis["isProblematic"])

	affected := out["affectedMembers"].([]any)
	assert.Len(t, affected, 1)
}

type staticExtractor string

func (s staticExtractor) Extract(context.Context, string) (string, error) { return string(s), nil }

func TestReadLabel(t *testing.T) {
	raw, cleaned, err := readLabel(context.Background(), staticExtractor("Sugar,\nCocoa butter, milk powder"), "label.png")
	require.NoError(t, err)
	assert.Equal(t, "Sugar,\nCocoa butter, milk powder", raw)
	assert.Equal(t, "Sugar, Cocoa butter, milk powder", cleaned)

	_, _, err = readLabel(context.Background(), staticExtractor(""), "label.pdf")
	assert.Error(t, err)
}
