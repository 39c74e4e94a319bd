package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	handler := NewHandler(NewService(NewInMemoryUserRepository()), tokens, zap.NewNop())

	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	return r
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterSuccess(t *testing.T) {
	r := setupTestRouter(t)

	w := postJSON(r, "/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "Password@123",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "Password@123")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterMissingFields(t *testing.T) {
	r := setupTestRouter(t)

	w := postJSON(r, "/auth/register", map[string]string{
		"email": "test@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupTestRouter(t)

	payload := map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "Password@123",
	}

	w1 := postJSON(r, "/auth/register", payload)
	require.Equal(t, http.StatusCreated, w1.Code)

	w2 := postJSON(r, "/auth/register", payload)
	assert.Equal(t, http.StatusConflict, w2.Code)
}

func TestLoginReturnsToken(t *testing.T) {
	r := setupTestRouter(t)

	postJSON(r, "/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "Password@123",
	})

	w := postJSON(r, "/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "Password@123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "test@example.com", resp.User.Email)

	bad := postJSON(r, "/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}
