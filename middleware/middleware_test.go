package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-backend/models"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testPasetoKey = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	tokens := services.NewTokenService(testPasetoKey, "jwt-secret", time.Hour)
	admin := &models.Admin{ID: primitive.NewObjectID(), Username: "root", Role: models.RoleSuperAdmin}
	token, err := tokens.IssueAdminToken(admin)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", AdminAuth(tokens), RequireRole(models.RoleSuperAdmin), func(c *gin.Context) {
		id, ok := AdminID(c)
		assert.True(t, ok)
		assert.Equal(t, admin.ID, id)
		assert.Equal(t, "root", AdminUsername(c))
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "garbage").Code)

	client, err := tokens.IssueClientToken(&models.User{ID: primitive.NewObjectID(), Email: "a@b.io"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, client).Code, "customer tokens are not admin tokens")
}

func TestRequireRoleForbidsPlainAdmins(t *testing.T) {
	tokens := services.NewTokenService(testPasetoKey, "jwt-secret", time.Hour)
	token, err := tokens.IssueAdminToken(&models.Admin{ID: primitive.NewObjectID(), Username: "ops", Role: models.RoleAdmin})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", AdminAuth(tokens), RequireRole(models.RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusForbidden, serve(r, token).Code)
}

func TestClientAuth(t *testing.T) {
	tokens := services.NewTokenService(testPasetoKey, "jwt-secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.io"}
	token, err := tokens.IssueClientToken(user)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", ClientAuth(tokens), func(c *gin.Context) {
		id, ok := UserID(c)
		assert.True(t, ok)
		assert.Equal(t, user.ID, id)
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)

	other := services.NewTokenService(testPasetoKey, "other-secret", time.Hour)
	forged, err := other.IssueClientToken(user)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, forged).Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60, 2, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "").Code)

	assert.True(t, rl.Allow("10.0.0.9"), "limits are per client")
	rl.Stop()
}
