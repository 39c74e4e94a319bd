package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"allergyguard/internal/auth"
	"allergyguard/internal/family"
	"allergyguard/internal/llm"
	"allergyguard/internal/meals"
	"allergyguard/internal/ocr"
	"allergyguard/internal/scan"
	"allergyguard/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noText struct{}

func (noText) Extract(context.Context, string) (string, error) { return "", nil }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	authService := auth.NewService(auth.NewInMemoryUserRepository())
	familyService := family.NewService(family.NewInMemoryRepository(), log)
	analyzer := llm.NewAnalyzer(llm.Unconfigured{}, log)
	scanService := scan.NewService(scan.NewInMemoryRepository(), familyService, analyzer, log)
	labelService := ocr.NewService(ocr.NewInMemoryRepository(), storage.NewMemoryStore(), noText{}, scanService, log)
	mealService := meals.NewService(meals.NewInMemoryRepository(), familyService, analyzer, log)

	return New(Deps{
		Log:    log,
		Tokens: tokens,
		Auth:   auth.NewHandler(authService, tokens, log),
		Family: family.NewHandler(familyService, log),
		Scan:   scan.NewHandler(scanService, log),
		Labels: ocr.NewHandler(labelService, log),
		Meals:  meals.NewHandler(mealService, log),
	})
}

func request(r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	if payload != nil {
		_ = json.NewEncoder(body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)

	w := request(r, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := setupRouter(t)

	for _, path := range []string{"/family", "/scans", "/meal-plans", "/auth/me"} {
		w := request(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRegisterLoginAndUseAPI(t *testing.T) {
	r := setupRouter(t)

	w := request(r, http.MethodPost, "/auth/register", "", gin.H{
		"name": "Pat", "email": "pat@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "pat@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	w = request(r, http.MethodGet, "/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodPost, "/family", login.Token, gin.H{
		"name":      "Sam",
		"role":      "child",
		"allergies": []gin.H{{"allergen": "peanuts", "severity": "severe"}},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodGet, "/meal-plans?date=2024-05-15", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// no LLM key configured
	w = request(r, http.MethodPost, "/analyze", login.Token, gin.H{"ingredients": "peanuts"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = request(r, http.MethodGet, "/analyze", login.Token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = request(r, http.MethodGet, "/scans/labels/unknown", login.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
