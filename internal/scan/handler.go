package scan

import (
	"errors"
	"net/http"
	"strconv"

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
// POST /analyze
// --------------------------------------------------
func (h *Handler) Analyze(c *gin.Context) {
	var req struct {
		Ingredients *string `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Ingredients == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrIngredientsRequired.Error()})
		return
	}

	userID := middleware.UserID(c)
	result, err := h.service.Analyze(c.Request.Context(), userID, *req.Ingredients, SourceText)
	if err != nil {
		switch {
		case errors.Is(err, ErrIngredientsRequired), errors.Is(err, llm.ErrNoIngredients):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide ingredients to analyze"})
		case errors.Is(err, llm.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service not configured. Please contact support."})
		default:
			h.log.Error("analysis failed", zap.Error(err), zap.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze ingredients. Please try again."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"scanId":   result.ScanID,
		"analysis": result.Analysis,
	})
}

// MethodNotAllowed answers GET /analyze.
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}

// --------------------------------------------------
// GET /scans?limit=
// --------------------------------------------------
func (h *Handler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	userID := middleware.UserID(c)
	scans, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		h.log.Error("load scan history failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load scan history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scans": scans})
}

// --------------------------------------------------
// GET /scans/:id
// --------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// --------------------------------------------------
// DELETE /scans/:id
// --------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		h.notFoundOr500(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) notFoundOr500(c *gin.Context, err error) {
	if errors.Is(err, ErrScanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
		return
	}
	h.log.Error("scan lookup failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load scan"})
}
