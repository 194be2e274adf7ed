package services

import (
	"testing"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	tokens := newTokens()
	admin := &models.Admin{ID: primitive.NewObjectID(), Username: "root", Role: models.RoleSuperAdmin}

	token, err := tokens.IssueAdminToken(admin)
	require.NoError(t, err)

	claims, err := tokens.VerifyAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID.Hex(), claims.AdminID)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
}

func TestAdminTokenExpired(t *testing.T) {
	tokens := newTokens()
	issuedAt := time.Now().Add(-48 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }
	token, err := tokens.IssueAdminToken(&models.Admin{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.VerifyAdminToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAdminTokenWrongKey(t *testing.T) {
	token, err := newTokens().IssueAdminToken(&models.Admin{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	other := NewTokenService("ffffffffffffffffffffffffffffffff", testJWTSecret, time.Hour)
	_, err = other.VerifyAdminToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestClientTokenRoundTrip(t *testing.T) {
	tokens := newTokens()
	user := &models.User{ID: primitive.NewObjectID(), Email: "ana@example.com"}

	token, err := tokens.IssueClientToken(user)
	require.NoError(t, err)

	claims, err := tokens.VerifyClientToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestClientTokenRejectsOtherTypes(t *testing.T) {
	claims := ClientClaims{
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   primitive.NewObjectID().Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = newTokens().VerifyClientToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestClientTokenExpired(t *testing.T) {
	tokens := newTokens()
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := tokens.IssueClientToken(&models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.VerifyClientToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAdminTokenIsNotAClientToken(t *testing.T) {
	tokens := newTokens()
	token, err := tokens.IssueAdminToken(&models.Admin{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = tokens.VerifyClientToken(token)
	assert.Error(t, err)
}
