package meals

import (
	"context"
	"testing"
	"time"

	"allergyguard/internal/allergen"
	"allergyguard/internal/family"
	"allergyguard/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubMembers struct {
	members []family.Member
}

func (s stubMembers) List(context.Context, string) ([]family.Member, error) {
	return s.members, nil
}

type stubSuggester struct {
	suggestions []llm.MealSuggestion
	err         error
	prompt      string
	mealTypes   []string
}

func (s *stubSuggester) SuggestMeals(_ context.Context, prompt string, mealTypes []string) ([]llm.MealSuggestion, error) {
	s.prompt = prompt
	s.mealTypes = mealTypes
	return s.suggestions, s.err
}

var testFamily = stubMembers{members: []family.Member{
	{
		ID:   "kid",
		Name: "Sam",
		Role: family.RoleChild,
		Allergies: []family.Allergy{
			{Allergen: "peanuts", Severity: allergen.SeverityLifeThreatening},
		},
	},
	{ID: "mom", Name: "Ava", Role: family.RoleParent},
}}

func newTestService(sug *stubSuggester) *Service {
	svc := NewService(NewInMemoryRepository(), testFamily, sug, zap.NewNop())
	// Wednesday
	svc.now = func() time.Time { return time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestWeekGroupsMealsWithSafety(t *testing.T) {
	svc := newTestService(&stubSuggester{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", MealInput{
		Date:        "2024-05-13",
		Name:        "Satay",
		Ingredients: []string{" chicken ", "satay peanuts", ""},
		Attendees:   []string{"kid", "mom"},
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "u1", MealInput{
		Date:        "2024-05-18",
		Name:        "Toast",
		Type:        "breakfast",
		Ingredients: []string{"bread", "peanut butter"},
		Attendees:   []string{"mom"},
	})
	require.NoError(t, err)

	// outside the week
	_, err = svc.Create(ctx, "u1", MealInput{Date: "2024-05-19", Name: "Soup"})
	require.NoError(t, err)

	plan, err := svc.Week(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-12", plan.Start)
	assert.Equal(t, "2024-05-18", plan.End)
	require.Len(t, plan.Days, 7)

	monday := plan.Days[1]
	assert.Equal(t, "2024-05-13", monday.Date)
	require.Len(t, monday.Meals, 1)
	meal := monday.Meals[0]
	assert.Equal(t, Dinner, meal.Type)
	assert.Equal(t, []string{"chicken", "satay peanuts"}, meal.Ingredients)
	assert.False(t, meal.Safety.IsSafe)
	assert.Equal(t, []string{"satay peanuts"}, meal.Safety.Risks)
	assert.Equal(t, 2, meal.Safety.AttendingMembers)

	saturday := plan.Days[6]
	require.Len(t, saturday.Meals, 1)
	assert.True(t, saturday.Meals[0].Safety.IsSafe)
	assert.Equal(t, 1, saturday.Meals[0].Safety.AttendingMembers)

	for _, d := range plan.Days {
		for _, m := range d.Meals {
			assert.NotEqual(t, "Soup", m.Name)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(&stubSuggester{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", MealInput{Date: "2024-05-13", Name: " "})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(ctx, "u1", MealInput{Date: "13/05/2024", Name: "Pasta"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Create(ctx, "u1", MealInput{Date: "2024-05-13", Name: "Pasta", Type: "brunch"})
	assert.ErrorIs(t, err, ErrInvalidMealType)

	_, err = svc.Create(ctx, "u1", MealInput{Date: "2024-05-13", Name: "Pasta", Attendees: []string{"stranger"}})
	assert.ErrorIs(t, err, ErrUnknownAttendee)

	_, err = svc.Week(ctx, "u1", "tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdateAndDeleteAreScoped(t *testing.T) {
	svc := newTestService(&stubSuggester{})
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", MealInput{Date: "2024-05-13", Name: "Pasta"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "u2", created.ID, MealInput{Date: "2024-05-13", Name: "Rice"})
	assert.ErrorIs(t, err, ErrMealNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", created.ID), ErrMealNotFound)

	updated, err := svc.Update(ctx, "u1", created.ID, MealInput{Date: "2024-05-14", Name: "Rice", Type: "lunch"})
	require.NoError(t, err)
	assert.Equal(t, "Rice", updated.Name)
	assert.Equal(t, Lunch, updated.Type)

	require.NoError(t, svc.Delete(ctx, "u1", created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", created.ID), ErrMealNotFound)
}

func TestSuggestBuildsPromptAndWarns(t *testing.T) {
	sug := &stubSuggester{suggestions: []llm.MealSuggestion{
		{Name: "Pad Thai", Ingredients: []string{"rice noodles", "crushed peanuts"}, AllergenWarnings: []string{}},
		{Name: "Omelette", Ingredients: []string{"eggs"}, AllergenWarnings: []string{}},
	}}
	svc := newTestService(sug)

	result, err := svc.Suggest(context.Background(), "u1", SuggestionRequest{
		MealTypes:          []string{"Dinner", "lunch", "dinner"},
		CookingTime:        "30 minutes",
		CuisinePreferences: []string{"Thai"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"dinner", "lunch"}, sug.mealTypes)
	assert.Contains(t, sug.prompt, "Sam (child): allergic to peanuts (life_threatening)")
	assert.Contains(t, sug.prompt, "Preferred cuisines: Thai.")

	require.Len(t, result.Suggestions, 2)
	require.Len(t, result.Suggestions[0].AllergenWarnings, 1)
	assert.Contains(t, result.Suggestions[0].AllergenWarnings[0], "crushed peanuts may affect Sam")
	assert.Empty(t, result.Suggestions[1].AllergenWarnings)

	assert.Equal(t, 2, result.Metadata.FamilyMembers)
	assert.Equal(t, "30 minutes", result.Metadata.CookingTime)
	assert.Equal(t, []string{"dinner", "lunch"}, result.Metadata.MealTypes)
}

func TestSuggestUsesCallerPrompt(t *testing.T) {
	sug := &stubSuggester{suggestions: []llm.MealSuggestion{}}
	svc := newTestService(sug)

	result, err := svc.Suggest(context.Background(), "u1", SuggestionRequest{
		Prompt:        "Quick snacks for the kids",
		FamilyMembers: []string{"kid"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Quick snacks for the kids", sug.prompt)
	assert.Equal(t, []string{"dinner"}, sug.mealTypes)
	assert.Equal(t, 1, result.Metadata.FamilyMembers)

	_, err = svc.Suggest(context.Background(), "u1", SuggestionRequest{FamilyMembers: []string{"ghost"}})
	assert.ErrorIs(t, err, ErrUnknownMember)
}
