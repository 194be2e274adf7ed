// Package middleware holds the gin middleware shared by the API routes.
package middleware

import (
	"strings"

	"storefront-backend/apperrors"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	adminIDKey       = "admin_id"
	adminUsernameKey = "admin_username"
	adminRoleKey     = "admin_role"
	userIDKey        = "user_id"
)

// AdminTokenVerifier checks admin tokens.
type AdminTokenVerifier interface {
	VerifyAdminToken(token string) (*services.AdminClaims, error)
}

// ClientTokenVerifier checks customer tokens.
type ClientTokenVerifier interface {
	VerifyClientToken(token string) (*services.ClientClaims, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func abort(c *gin.Context, err error) {
	apperrors.Respond(c, err)
	c.Abort()
}

// AdminAuth requires a valid admin token and stores its claims on the context.
func AdminAuth(verifier AdminTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, apperrors.ErrUnauthorized.WithMessage("Authorization token required"))
			return
		}
		claims, err := verifier.VerifyAdminToken(token)
		if err != nil {
			abort(c, apperrors.ErrInvalidToken)
			return
		}
		id, err := primitive.ObjectIDFromHex(claims.AdminID)
		if err != nil {
			abort(c, apperrors.ErrInvalidToken)
			return
		}
		c.Set(adminIDKey, id)
		c.Set(adminUsernameKey, claims.Username)
		c.Set(adminRoleKey, claims.Role)
		c.Next()
	}
}

// ClientAuth requires a valid customer token.
func ClientAuth(verifier ClientTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, apperrors.ErrUnauthorized.WithMessage("Authorization token required"))
			return
		}
		claims, err := verifier.VerifyClientToken(token)
		if err != nil {
			abort(c, apperrors.ErrInvalidToken)
			return
		}
		id, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			abort(c, apperrors.ErrInvalidToken)
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// RequireRole allows only admins holding one of roles. It must run after AdminAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(adminRoleKey)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		abort(c, apperrors.ErrForbidden.WithMessage("Insufficient permissions"))
	}
}

// AdminID returns the authenticated admin id.
func AdminID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := c.Get(adminIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, ok := id.(primitive.ObjectID)
	return oid, ok
}

// AdminUsername returns the authenticated admin username.
func AdminUsername(c *gin.Context) string {
	return c.GetString(adminUsernameKey)
}

// AdminRole returns the authenticated admin role.
func AdminRole(c *gin.Context) string {
	return c.GetString(adminRoleKey)
}

// UserID returns the authenticated customer id.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, ok := id.(primitive.ObjectID)
	return oid, ok
}
