package meals

import (
	"errors"
	"net/http"

	"allergyguard/internal/llm"
	"allergyguard/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// --------------------------------------------------
// GET /meal-plans?date=YYYY-MM-DD
// --------------------------------------------------
func (h *Handler) Week(c *gin.Context) {
	plan, err := h.service.Week(c.Request.Context(), middleware.UserID(c), c.Query("date"))
	if err != nil {
		h.fail(c, err, "Failed to load meal plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// --------------------------------------------------
// POST /meal-plans/meals
// --------------------------------------------------
func (h *Handler) Create(c *gin.Context) {
	var in MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	meal, err := h.service.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		h.fail(c, err, "Failed to save meal")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "meal": meal})
}

// --------------------------------------------------
// PUT /meal-plans/meals/:id
// --------------------------------------------------
func (h *Handler) Update(c *gin.Context) {
	var in MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	meal, err := h.service.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err, "Failed to update meal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "meal": meal})
}

// --------------------------------------------------
// DELETE /meal-plans/meals/:id
// --------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete meal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --------------------------------------------------
// POST /meal-suggestions
// --------------------------------------------------
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := middleware.UserID(c)
	result, err := h.service.Suggest(c.Request.Context(), userID, req)
	if err != nil {
		var parseErr *llm.ParseError
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service not configured. Please contact support."})
		case errors.As(err, &parseErr):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      "Failed to parse AI response as JSON",
				"details":    parseErr.Reason,
				"rawContent": parseErr.Raw,
			})
		case errors.Is(err, ErrInvalidMealType), errors.Is(err, ErrUnknownMember):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error("meal suggestions failed", zap.Error(err), zap.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate meal suggestions"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"suggestions": result.Suggestions,
		"metadata":    result.Metadata,
	})
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrMealNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidMealType),
		errors.Is(err, ErrUnknownAttendee):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
