package meals

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"allergyguard/internal/allergen"
	"allergyguard/internal/family"
	"allergyguard/internal/llm"

	"go.uber.org/zap"
)

var (
	ErrNameRequired    = errors.New("meal name is required")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrUnknownAttendee = errors.New("attendee is not a family member")
	ErrUnknownMember   = errors.New("family member not found")
)

// MemberSource is satisfied by *family.Service.
type MemberSource interface {
	List(ctx context.Context, userID string) ([]family.Member, error)
}

// Suggester is satisfied by *llm.Analyzer.
type Suggester interface {
	SuggestMeals(ctx context.Context, prompt string, mealTypes []string) ([]llm.MealSuggestion, error)
}

type Service struct {
	repo      Repository
	members   MemberSource
	suggester Suggester
	log       *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, members MemberSource, suggester Suggester, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		members:   members,
		suggester: suggester,
		log:       log,
		now:       time.Now,
	}
}

// --------------------------------------------------
// Plans
// --------------------------------------------------

// Week returns Sunday..Saturday around date ("" means today) with every
// meal checked against the allergies of the members attending it.
func (s *Service) Week(ctx context.Context, userID, date string) (*WeekPlan, error) {
	day := s.now()
	if date != "" {
		parsed, err := time.Parse(DateLayout, date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		day = parsed
	}

	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)

	members, err := s.members.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}

	meals, err := s.repo.ListRange(ctx, userID, start.Format(DateLayout), end.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("load meals: %w", err)
	}

	plan := &WeekPlan{
		Start: start.Format(DateLayout),
		End:   end.Format(DateLayout),
		Days:  make([]Day, 7),
	}
	index := map[string]int{}
	for i := range plan.Days {
		d := start.AddDate(0, 0, i).Format(DateLayout)
		plan.Days[i] = Day{Date: d, Meals: []PlannedMeal{}}
		index[d] = i
	}

	for _, m := range meals {
		i, ok := index[m.Date]
		if !ok {
			continue
		}
		plan.Days[i].Meals = append(plan.Days[i].Meals, PlannedMeal{
			Meal:   m,
			Safety: CheckSafety(m, members),
		})
	}

	return plan, nil
}

// CheckSafety matches a meal's ingredients against its attendees' allergies.
func CheckSafety(m Meal, members []family.Member) Safety {
	var attending []family.Member
	for _, member := range members {
		if slices.Contains(m.Attendees, member.ID) {
			attending = append(attending, member)
		}
	}

	risks := allergen.UnsafeIngredients(m.Ingredients, family.Flatten(attending))
	return Safety{
		IsSafe:           len(risks) == 0,
		Risks:            risks,
		AttendingMembers: len(attending),
	}
}

func (s *Service) Create(ctx context.Context, userID string, in MealInput) (*PlannedMeal, error) {
	members, err := s.members.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}

	m, err := buildMeal(in, members)
	if err != nil {
		return nil, err
	}
	m.UserID = userID

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("save meal: %w", err)
	}
	return &PlannedMeal{Meal: *m, Safety: CheckSafety(*m, members)}, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in MealInput) (*PlannedMeal, error) {
	if _, err := s.repo.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	members, err := s.members.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}

	m, err := buildMeal(in, members)
	if err != nil {
		return nil, err
	}
	m.ID = id
	m.UserID = userID

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return &PlannedMeal{Meal: *m, Safety: CheckSafety(*m, members)}, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func buildMeal(in MealInput, members []family.Member) (*Meal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	date, err := time.Parse(DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, ErrInvalidDate
	}

	mealType, err := ParseMealType(in.Type)
	if err != nil {
		return nil, err
	}

	attendees := []string{}
	for _, id := range in.Attendees {
		if !slices.ContainsFunc(members, func(m family.Member) bool { return m.ID == id }) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAttendee, id)
		}
		if !slices.Contains(attendees, id) {
			attendees = append(attendees, id)
		}
	}

	return &Meal{
		Date:        date.Format(DateLayout),
		Name:        name,
		Type:        mealType,
		Ingredients: trimAll(in.Ingredients),
		Attendees:   attendees,
		Notes:       strings.TrimSpace(in.Notes),
		PrepTime:    in.PrepTime,
		CookTime:    in.CookTime,
	}, nil
}

func trimAll(list []string) []string {
	out := []string{}
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// --------------------------------------------------
// Suggestions
// --------------------------------------------------

// Suggest asks the model for meals and re-checks each one against the family.
func (s *Service) Suggest(ctx context.Context, userID string, req SuggestionRequest) (*Suggestions, error) {
	mealTypes, err := normalizeMealTypes(req.MealTypes)
	if err != nil {
		return nil, err
	}

	members, err := s.members.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}
	planned, err := selectMembers(members, req.FamilyMembers)
	if err != nil {
		return nil, err
	}
	allergies := family.Flatten(planned)

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = buildSuggestionPrompt(planned, mealTypes, req)
	}

	suggestions, err := s.suggester.SuggestMeals(ctx, prompt, mealTypes)
	if err != nil {
		return nil, err
	}

	for i := range suggestions {
		suggestions[i].AllergenWarnings = appendWarnings(suggestions[i].AllergenWarnings, suggestions[i].Ingredients, allergies)
	}

	s.log.Info("generated meal suggestions",
		zap.String("user_id", userID),
		zap.Int("count", len(suggestions)),
		zap.Int("members", len(planned)),
	)

	return &Suggestions{
		Suggestions: suggestions,
		Metadata: SuggestionMetadata{
			GeneratedAt:        s.now().UTC(),
			FamilyMembers:      len(planned),
			MealTypes:          mealTypes,
			CookingTime:        req.CookingTime,
			CuisinePreferences: req.CuisinePreferences,
		},
	}, nil
}

func normalizeMealTypes(raw []string) ([]string, error) {
	out := []string{}
	for _, v := range raw {
		if strings.TrimSpace(v) == "" {
			continue
		}
		t, err := ParseMealType(v)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, string(t)) {
			out = append(out, string(t))
		}
	}
	if len(out) == 0 {
		out = append(out, string(Dinner))
	}
	return out, nil
}

func selectMembers(members []family.Member, ids []string) ([]family.Member, error) {
	if len(ids) == 0 {
		return members, nil
	}

	out := make([]family.Member, 0, len(ids))
	for _, id := range ids {
		i := slices.IndexFunc(members, func(m family.Member) bool { return m.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMember, id)
		}
		out = append(out, members[i])
	}
	return out, nil
}

// appendWarnings adds one warning per matched allergy not already reported.
func appendWarnings(warnings, ingredients []string, allergies []allergen.MemberAllergy) []string {
	for _, ingredient := range ingredients {
		for _, a := range allergies {
			if !allergen.Matches(ingredient, a.Allergen) {
				continue
			}
			w := fmt.Sprintf("%s may affect %s (%s allergy, %s)", ingredient, a.MemberName, a.Allergen, a.Severity)
			if !slices.Contains(warnings, w) {
				warnings = append(warnings, w)
			}
		}
	}
	return warnings
}

func buildSuggestionPrompt(members []family.Member, mealTypes []string, req SuggestionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %s meals for a family of %d.\n", strings.Join(mealTypes, ", "), len(members))

	for _, m := range members {
		if len(m.Allergies) == 0 {
			fmt.Fprintf(&b, "- %s (%s): no known allergies\n", m.Name, m.Role)
			continue
		}
		parts := make([]string, 0, len(m.Allergies))
		for _, a := range m.Allergies {
			parts = append(parts, fmt.Sprintf("%s (%s)", a.Allergen, a.Severity))
		}
		fmt.Fprintf(&b, "- %s (%s): allergic to %s\n", m.Name, m.Role, strings.Join(parts, ", "))
	}

	b.WriteString("Every meal must be safe for all of these members. Never use an ingredient they are allergic to.\n")
	if req.CookingTime != "" {
		fmt.Fprintf(&b, "Cooking time: %s.\n", req.CookingTime)
	}
	if len(req.CuisinePreferences) > 0 {
		fmt.Fprintf(&b, "Preferred cuisines: %s.\n", strings.Join(req.CuisinePreferences, ", "))
	}
	if req.SpecialRequests != "" {
		fmt.Fprintf(&b, "Special requests: %s\n", req.SpecialRequests)
	}
	return b.String()
}
