package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/infrastructure/auth"
	"github.com/kasso/backend/internal/infrastructure/config"
)

func setupJWTRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	gin.SetMode(gin.TestMode)
	svc, err := auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-that-is-long-enough-123",
		TokenExpiration: time.Hour,
	})
	require.NoError(t, err)

	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/webhooks/payment", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/wallet/balance", func(c *gin.Context) {
		id, ok := GetJWTUserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})
	return r, svc
}

func TestJWTAuthMiddleware(t *testing.T) {
	r, svc := setupJWTRouter(t)
	userID := uuid.New()
	token, err := svc.GenerateToken(userID, "tyrion@kasso.test")
	require.NoError(t, err)

	t.Run("valid token passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})

	t.Run("missing header rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad token rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("health probe skips auth", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("webhook path skips auth", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("generates when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("echoes caller's id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		r.ServeHTTP(w, req)
		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})
}
