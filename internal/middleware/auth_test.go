package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anypos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func signToken(t *testing.T, userID, role string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "role": role,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.JWTAuth(testSecret))
	r.GET("/protected", func(c *gin.Context) {
		claims := middleware.GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "role": claims.Role})
	})
	r.GET("/admin", middleware.RequireRole(middleware.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestProtectedEndpointNoToken(t *testing.T) {
	w := doGet(testRouter(), "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpointValidToken(t *testing.T) {
	tok := signToken(t, uuid.New().String(), middleware.RoleCashier, time.Hour)
	w := doGet(testRouter(), "/protected", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedEndpointExpiredToken(t *testing.T) {
	tok := signToken(t, uuid.New().String(), middleware.RoleCashier, -time.Second)
	w := doGet(testRouter(), "/protected", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleForbidden(t *testing.T) {
	tok := signToken(t, uuid.New().String(), middleware.RoleCashier, time.Hour)
	w := doGet(testRouter(), "/admin", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleAllowed(t *testing.T) {
	tok := signToken(t, uuid.New().String(), middleware.RoleAdmin, time.Hour)
	w := doGet(testRouter(), "/admin", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}
