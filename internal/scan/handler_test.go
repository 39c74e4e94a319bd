package scan

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"allergyguard/internal/allergen"
	"allergyguard/internal/llm"
	"allergyguard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupScanRouter(an *stubAnalyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewInMemoryRepository(), stubFamily{}, an, zap.NewNop())
	h := NewHandler(svc, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "u1")
		c.Next()
	})
	r.POST("/analyze", h.Analyze)
	r.GET("/analyze", h.MethodNotAllowed)
	r.GET("/scans", h.History)
	r.GET("/scans/:id", h.Get)
	r.DELETE("/scans/:id", h.Delete)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	r := setupScanRouter(&stubAnalyzer{analysis: &llm.Analysis{
		DetectedAllergens: []string{"milk"},
		RiskLevel:         allergen.RiskMedium,
		Analysis:          "contains milk",
	}})

	w := send(r, http.MethodPost, "/analyze", `{"ingredients":"milk, sugar"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool           `json:"success"`
		ScanID   string         `json:"scanId"`
		Analysis map[string]any `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ScanID)
	assert.Equal(t, "MEDIUM", resp.Analysis["riskLevel"])
	assert.Equal(t, "contains milk", resp.Analysis["analysis"])

	w = send(r, http.MethodGet, "/scans/"+resp.ScanID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(r, http.MethodGet, "/scans?limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resp.ScanID)

	w = send(r, http.MethodDelete, "/scans/"+resp.ScanID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(r, http.MethodGet, "/scans/"+resp.ScanID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	tests := []struct {
		name     string
		analyzer *stubAnalyzer
		body     string
		status   int
		message  string
	}{
		{"missing body", &stubAnalyzer{}, `{}`, http.StatusBadRequest, ErrIngredientsRequired.Error()},
		{"blank", &stubAnalyzer{}, `{"ingredients":"  "}`, http.StatusBadRequest, "Please provide ingredients to analyze"},
		{"not configured", &stubAnalyzer{err: llm.ErrNotConfigured}, `{"ingredients":"salt"}`, http.StatusServiceUnavailable, "AI service not configured. Please contact support."},
		{"bad model output", &stubAnalyzer{err: llm.ErrInvalidResponse}, `{"ingredients":"salt"}`, http.StatusInternalServerError, "Failed to analyze ingredients. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(setupScanRouter(tt.analyzer), http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestAnalyzeGetNotAllowed(t *testing.T) {
	w := send(setupScanRouter(&stubAnalyzer{}), http.MethodGet, "/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	w := send(setupScanRouter(&stubAnalyzer{}), http.MethodGet, "/scans?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMalformedScanIDIsNotFound(t *testing.T) {
	r := setupScanRouter(&stubAnalyzer{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/scans/abc"},
		{http.MethodDelete, "/scans/abc"},
		{http.MethodGet, "/scans/123e4567-e89b-12d3-a456-42661417400"},
		{http.MethodGet, "/scans/123e4567-e89b-12d3-a456-426614174000"},
	}
	for _, tt := range tests {
		w := send(r, tt.method, tt.path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, tt.method+" "+tt.path)
	}

	assert.True(t, validID("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, validID("abc"))
	assert.False(t, validID(""))
}
