package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boxstudio/internal/shared/config"
	"boxstudio/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = config.AuthConfig{
	APIToken:     "front-desk",
	JWTSecret:    "test-secret",
	JWTIssuer:    "boxstudio",
	JWTExpiresIn: time.Hour,
}

func newTestEngine(cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewRouter(NewController(NewService(cfg))).SetupRoutes(engine.Group("/api/v1"))
	return engine
}

func postToken(engine *gin.Engine, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestTokenExchangeIssuesVerifiableToken(t *testing.T) {
	engine := newTestEngine(testAuth)

	w := postToken(engine, map[string]string{"api_token": "front-desk", "subject": "coach-lee"})
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.EqualValues(t, 3600, env.Data.ExpiresIn)

	claims, err := middleware.ParseAdminToken(testAuth, env.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "coach-lee", claims.Subject)
}

func TestTokenExchangeDefaultsSubject(t *testing.T) {
	resp, err := NewService(testAuth).ExchangeToken(t.Context(), &TokenRequest{APIToken: "front-desk"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Subject)
}

func TestTokenExchangeFailures(t *testing.T) {
	engine := newTestEngine(testAuth)
	assert.Equal(t, http.StatusUnauthorized, postToken(engine, map[string]string{"api_token": "wrong"}).Code)
	assert.Equal(t, http.StatusBadRequest, postToken(engine, map[string]string{"subject": "x"}).Code)

	noSecret := testAuth
	noSecret.JWTSecret = ""
	assert.Equal(t, http.StatusServiceUnavailable, postToken(newTestEngine(noSecret), map[string]string{"api_token": "front-desk"}).Code)
}
