package ocr

import (
	"errors"
	"net/http"

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
// POST /scans/labels
// --------------------------------------------------
func (h *Handler) Upload(c *gin.Context) {
	userID := middleware.UserID(c)

	file, header, err := c.Request.FormFile("label_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label_image is required"})
		return
	}
	defer file.Close()

	upload, err := h.service.Upload(
		c.Request.Context(),
		userID,
		file,
		header.Filename,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingExtension), errors.Is(err, ErrUnsupportedImage), errors.Is(err, ErrEmptyImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrImageTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		default:
			h.log.Error("label upload failed", zap.Error(err), zap.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload label"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"uploadId": upload.ID,
		"status":   upload.Status,
	})
}

// --------------------------------------------------
// GET /scans/labels/:id
// --------------------------------------------------
func (h *Handler) Status(c *gin.Context) {
	upload, err := h.service.Status(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// --------------------------------------------------
// POST /scans/labels/:id/retry
// --------------------------------------------------
func (h *Handler) Retry(c *gin.Context) {
	upload, err := h.service.Retry(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, upload)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUploadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Label upload not found"})
	case errors.Is(err, ErrNotRetryable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("label upload lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load label upload"})
	}
}
