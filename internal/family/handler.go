package family

import (
	"errors"
	"net/http"

	"allergyguard/internal/allergen"
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

type updateRequest struct {
	ID string `json:"id"`
	MemberInput
}

// --------------------------------------------------
// GET /family
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	members, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err, "Failed to load family members")
		return
	}
	c.JSON(http.StatusOK, gin.H{"familyMembers": members})
}

// --------------------------------------------------
// POST /family
// --------------------------------------------------
func (h *Handler) Add(c *gin.Context) {
	var req MemberInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	member, members, err := h.service.Add(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err, "Failed to add family member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"member":        member,
		"familyMembers": members,
	})
}

// --------------------------------------------------
// PUT /family/members/:id  (or PUT /family with id in body)
// --------------------------------------------------
func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	memberID := c.Param("id")
	if memberID == "" {
		memberID = req.ID
	}

	members, err := h.service.Update(c.Request.Context(), middleware.UserID(c), memberID, req.MemberInput)
	if err != nil {
		h.fail(c, err, "Failed to update family member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"familyMembers": members,
	})
}

// --------------------------------------------------
// DELETE /family/members/:id  (or DELETE /family?id=)
// --------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	memberID := c.Param("id")
	if memberID == "" {
		memberID = c.Query("id")
	}

	members, err := h.service.Delete(c.Request.Context(), middleware.UserID(c), memberID)
	if err != nil {
		h.fail(c, err, "Failed to remove family member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"familyMembers": members,
	})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Family member not found"})
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrMemberIDRequired),
		errors.Is(err, ErrAllergenRequired),
		errors.Is(err, ErrInvalidAge),
		errors.Is(err, allergen.ErrUnknownSeverity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error(fallback, zap.Error(err), zap.String("user_id", middleware.UserID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
