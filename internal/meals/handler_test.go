package meals

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"allergyguard/internal/llm"
	"allergyguard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMealRouter(sug *stubSuggester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newTestService(sug), zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "u1")
		c.Next()
	})
	r.GET("/meal-plans", h.Week)
	r.POST("/meal-plans/meals", h.Create)
	r.PUT("/meal-plans/meals/:id", h.Update)
	r.DELETE("/meal-plans/meals/:id", h.Delete)
	r.POST("/meal-suggestions", h.Suggest)
	return r
}

func call(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	if payload != nil {
		_ = json.NewEncoder(body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMealPlanEndpoints(t *testing.T) {
	r := setupMealRouter(&stubSuggester{})

	w := call(r, http.MethodPost, "/meal-plans/meals", MealInput{Date: "2024-05-13", Name: "Pasta"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Meal PlannedMeal `json:"meal"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Meal.ID)

	w = call(r, http.MethodGet, "/meal-plans?date=2024-05-15", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var plan WeekPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Len(t, plan.Days[1].Meals, 1)

	w = call(r, http.MethodPut, "/meal-plans/meals/"+created.Meal.ID, MealInput{Date: "2024-05-13", Name: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodDelete, "/meal-plans/meals/"+created.Meal.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodDelete, "/meal-plans/meals/"+created.Meal.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodGet, "/meal-plans?date=bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestEndpointErrors(t *testing.T) {
	w := call(setupMealRouter(&stubSuggester{err: llm.ErrNotConfigured}), http.MethodPost, "/meal-suggestions", SuggestionRequest{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = call(setupMealRouter(&stubSuggester{err: &llm.ParseError{Reason: "bad json", Raw: "nope"}}), http.MethodPost, "/meal-suggestions", SuggestionRequest{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"rawContent":"nope"`)

	w = call(setupMealRouter(&stubSuggester{}), http.MethodPost, "/meal-suggestions", SuggestionRequest{MealTypes: []string{"brunch"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
