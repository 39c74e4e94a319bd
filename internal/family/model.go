package family

import (
	"strings"

	"allergyguard/internal/allergen"
)

const DefaultFamilyName = "My Family"

type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
	RoleOther  Role = "other"
)

// ParseRole maps anything unknown to RoleOther.
func ParseRole(s string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleParent, RoleChild:
		return r
	}
	return RoleOther
}

type Family struct {
	ID     string
	UserID string
	Name   string
}

type Allergy struct {
	ID       string            `json:"id"`
	Allergen string            `json:"allergen"`
	Severity allergen.Severity `json:"severity"`
	Notes    *string           `json:"notes"`
}

type Member struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"-"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Age       *int      `json:"age,omitempty"`
	Allergies []Allergy `json:"allergies"`
}

// AllergyInput is the request shape; severity is parsed by the service.
type AllergyInput struct {
	Allergen string  `json:"allergen"`
	Severity string  `json:"severity"`
	Notes    *string `json:"notes"`
}

type MemberInput struct {
	Name      string         `json:"name"`
	Role      string         `json:"role"`
	Age       *int           `json:"age"`
	Allergies []AllergyInput `json:"allergies"`
}
