package meals

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"allergyguard/internal/llm"
)

const DateLayout = "2006-01-02"

type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

var ErrInvalidMealType = errors.New("invalid meal type")

// ParseMealType defaults an empty value to dinner.
func ParseMealType(s string) (MealType, error) {
	switch t := MealType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return Dinner, nil
	case Breakfast, Lunch, Dinner, Snack:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMealType, s)
	}
}

type Meal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Date        string    `json:"date"`
	Name        string    `json:"name"`
	Type        MealType  `json:"type"`
	Ingredients []string  `json:"ingredients"`
	Attendees   []string  `json:"attendees"`
	Notes       string    `json:"notes,omitempty"`
	PrepTime    *int      `json:"prepTime,omitempty"`
	CookTime    *int      `json:"cookTime,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MealInput struct {
	Date        string   `json:"date"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Ingredients []string `json:"ingredients"`
	Attendees   []string `json:"attendees"`
	Notes       string   `json:"notes"`
	PrepTime    *int     `json:"prepTime"`
	CookTime    *int     `json:"cookTime"`
}

// Safety is the allergy check of one meal against the members attending it.
type Safety struct {
	IsSafe           bool     `json:"isSafe"`
	Risks            []string `json:"risks"`
	AttendingMembers int      `json:"attendingMembers"`
}

type PlannedMeal struct {
	Meal
	Safety Safety `json:"safety"`
}

type Day struct {
	Date  string        `json:"date"`
	Meals []PlannedMeal `json:"meals"`
}

type WeekPlan struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  []Day  `json:"days"`
}

type SuggestionRequest struct {
	Prompt string `json:"prompt"`
	// FamilyMembers narrows the plan to these member ids; empty means everyone.
	FamilyMembers      []string `json:"familyMembers"`
	MealTypes          []string `json:"mealTypes"`
	CookingTime        string   `json:"cookingTime"`
	CuisinePreferences []string `json:"cuisinePreferences"`
	SpecialRequests    string   `json:"specialRequests"`
}

type SuggestionMetadata struct {
	GeneratedAt        time.Time `json:"generatedAt"`
	FamilyMembers      int       `json:"familyMembers"`
	MealTypes          []string  `json:"mealTypes"`
	CookingTime        string    `json:"cookingTime"`
	CuisinePreferences []string  `json:"cuisinePreferences"`
}

type Suggestions struct {
	Suggestions []llm.MealSuggestion `json:"suggestions"`
	Metadata    SuggestionMetadata   `json:"metadata"`
}
