package allergen

import "strings"

// CommonAllergens is checked when a family has not recorded any allergy.
var CommonAllergens = []string{
	"milk", "eggs", "fish", "shellfish", "tree nuts",
	"peanuts", "wheat", "soybeans", "sesame",
}

// MemberAllergy is one recorded allergy flattened with its owner.
type MemberAllergy struct {
	MemberID   string   `json:"memberId"`
	MemberName string   `json:"memberName"`
	Allergen   string   `json:"allergen"`
	Severity   Severity `json:"severity"`
}

// Match links a recorded allergy to the detected term that triggered it.
type Match struct {
	MemberAllergy
	Detected string `json:"detected"`
}

type AffectedMember struct {
	MemberID   string   `json:"memberId"`
	MemberName string   `json:"memberName"`
	Allergens  []string `json:"allergens"`
	Severity   Severity `json:"severity"`
}

type Report struct {
	Matches       []Match          `json:"matches"`
	Affected      []AffectedMember `json:"affectedMembers"`
	WorstSeverity Severity         `json:"worstSeverity"`
}

func (r Report) HasMatches() bool {
	return len(r.Matches) > 0
}

// Matches reports whether either term contains the other, ignoring case.
func Matches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// CrossReference checks every recorded allergy against every detected term.
func CrossReference(detected []string, allergies []MemberAllergy) Report {
	report := Report{
		Matches:  []Match{},
		Affected: []AffectedMember{},
	}
	index := map[string]int{}

	for _, allergy := range allergies {
		for _, term := range detected {
			if !Matches(allergy.Allergen, term) {
				continue
			}

			report.Matches = append(report.Matches, Match{
				MemberAllergy: allergy,
				Detected:      term,
			})
			if allergy.Severity > report.WorstSeverity {
				report.WorstSeverity = allergy.Severity
			}

			i, seen := index[allergy.MemberID]
			if !seen {
				i = len(report.Affected)
				index[allergy.MemberID] = i
				report.Affected = append(report.Affected, AffectedMember{
					MemberID:   allergy.MemberID,
					MemberName: allergy.MemberName,
				})
			}
			member := &report.Affected[i]
			if !containsFold(member.Allergens, allergy.Allergen) {
				member.Allergens = append(member.Allergens, allergy.Allergen)
			}
			if allergy.Severity > member.Severity {
				member.Severity = allergy.Severity
			}
		}
	}

	return report
}

// Escalate raises the AI verdict when the family is actually affected.
// It never lowers it.
func Escalate(ai RiskLevel, r Report) RiskLevel {
	if !r.HasMatches() {
		return ai
	}

	floor := RiskHigh
	if r.WorstSeverity >= SeveritySevere {
		floor = RiskCritical
	}
	if ai > floor {
		return ai
	}
	return floor
}

// UnsafeIngredients returns the ingredients that match any allergy, in input order.
func UnsafeIngredients(ingredients []string, allergies []MemberAllergy) []string {
	risks := []string{}
	for _, ingredient := range ingredients {
		for _, allergy := range allergies {
			if Matches(ingredient, allergy.Allergen) {
				risks = append(risks, ingredient)
				break
			}
		}
	}
	return risks
}

// Names returns the distinct lower-cased allergen names, first-seen order.
func Names(allergies []MemberAllergy) []string {
	names := []string{}
	seen := map[string]bool{}
	for _, allergy := range allergies {
		name := strings.ToLower(strings.TrimSpace(allergy.Allergen))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
