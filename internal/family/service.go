package family

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"allergyguard/internal/allergen"

	"go.uber.org/zap"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrMemberIDRequired = errors.New("member id is required")
	ErrAllergenRequired = errors.New("allergen is required for every allergy")
	ErrInvalidAge       = errors.New("age must be between 0 and 150")
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// --------------------------------------------------
// Get or create the user's default family
// --------------------------------------------------
func (s *Service) ensureFamily(ctx context.Context, userID string) (*Family, error) {
	f, err := s.repo.FamilyForUser(ctx, userID)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, ErrFamilyNotFound) {
		return nil, err
	}

	f = &Family{UserID: userID, Name: DefaultFamilyName}
	if err := s.repo.CreateFamily(ctx, f); err != nil {
		return nil, fmt.Errorf("create default family: %w", err)
	}
	s.log.Info("created default family", zap.String("user_id", userID), zap.String("family_id", f.ID))
	return f, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Member, error) {
	f, err := s.ensureFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, f.ID)
}

// Add creates a member and returns it along with the refreshed family list.
func (s *Service) Add(ctx context.Context, userID string, in MemberInput) (*Member, []Member, error) {
	member, err := buildMember(in)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.ensureFamily(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	member.FamilyID = f.ID

	if err := s.repo.CreateMember(ctx, member); err != nil {
		return nil, nil, fmt.Errorf("create member: %w", err)
	}

	members, err := s.repo.ListMembers(ctx, f.ID)
	if err != nil {
		return nil, nil, err
	}
	return member, members, nil
}

// Update replaces the member's details and its whole allergy list.
func (s *Service) Update(ctx context.Context, userID, memberID string, in MemberInput) ([]Member, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, ErrMemberIDRequired
	}
	member, err := buildMember(in)
	if err != nil {
		return nil, err
	}
	member.ID = memberID

	if err := s.repo.ReplaceMember(ctx, userID, member); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, member.FamilyID)
}

func (s *Service) Delete(ctx context.Context, userID, memberID string) ([]Member, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, ErrMemberIDRequired
	}

	familyID, err := s.repo.DeleteMember(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, familyID)
}

// Allergies flattens every member's allergies for cross-referencing.
func (s *Service) Allergies(ctx context.Context, userID string) ([]allergen.MemberAllergy, error) {
	members, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Flatten(members), nil
}

func Flatten(members []Member) []allergen.MemberAllergy {
	out := []allergen.MemberAllergy{}
	for _, m := range members {
		for _, a := range m.Allergies {
			out = append(out, allergen.MemberAllergy{
				MemberID:   m.ID,
				MemberName: m.Name,
				Allergen:   a.Allergen,
				Severity:   a.Severity,
			})
		}
	}
	return out
}

func buildMember(in MemberInput) (*Member, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > 150) {
		return nil, ErrInvalidAge
	}

	member := &Member{
		Name:      name,
		Role:      ParseRole(in.Role),
		Age:       in.Age,
		Allergies: make([]Allergy, 0, len(in.Allergies)),
	}

	for _, a := range in.Allergies {
		name := strings.TrimSpace(a.Allergen)
		if name == "" {
			return nil, ErrAllergenRequired
		}
		sev, err := allergen.ParseSeverity(a.Severity)
		if err != nil {
			return nil, err
		}

		var notes *string
		if a.Notes != nil && strings.TrimSpace(*a.Notes) != "" {
			n := strings.TrimSpace(*a.Notes)
			notes = &n
		}

		member.Allergies = append(member.Allergies, Allergy{
			Allergen: name,
			Severity: sev,
			Notes:    notes,
		})
	}

	return member, nil
}
