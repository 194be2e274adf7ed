package services

import (
	"context"
	"strings"
	"testing"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	store := repotest.New()
	tokens := newTokens()
	svc := NewAdminService(store.Admins, tokens)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateAdminRequest{Username: "root", Email: "Root@Example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)
	assert.Equal(t, "root@example.com", created.Email)

	admin, token, err := svc.Login(ctx, models.LoginRequest{Username: "root", Password: "longenough"})
	require.NoError(t, err)
	assert.NotNil(t, admin.LastLoginAt)

	claims, err := tokens.VerifyAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID.Hex(), claims.AdminID)

	_, _, err = svc.Login(ctx, models.LoginRequest{Username: "root", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, models.LoginRequest{Username: "ghost", Password: "longenough"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	store := repotest.New()
	svc := NewAdminService(store.Admins, newTokens())
	ctx := context.Background()

	a, err := svc.Create(ctx, models.CreateAdminRequest{Username: "a", Email: "a@x.io", Password: "password1"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, models.CreateAdminRequest{Username: "b", Email: "b@x.io", Password: "password1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, a.ID, a.ID), apperrors.ErrBadRequest)
	assert.NoError(t, svc.Delete(ctx, a.ID, b.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID, b.ID), apperrors.ErrNotFound)
}

func TestAdminCreateRules(t *testing.T) {
	store := repotest.New()
	svc := NewAdminService(store.Admins, newTokens())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CreateAdminRequest{Username: "a", Email: "a@x.io", Password: "short"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = svc.Create(ctx, models.CreateAdminRequest{Username: "a", Email: "a@x.io", Password: strings.Repeat("p", 80)})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = svc.Create(ctx, models.CreateAdminRequest{Username: "a", Email: "a@x.io", Password: "password1", Role: "owner"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Create(ctx, models.CreateAdminRequest{Username: "a", Email: "a@x.io", Password: "password1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CreateAdminRequest{Username: "a", Email: "other@x.io", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAdminResetPassword(t *testing.T) {
	store := repotest.New()
	svc := NewAdminService(store.Admins, newTokens())
	ctx := context.Background()
	_, err := svc.Create(ctx, models.CreateAdminRequest{Username: "root", Email: "r@x.io", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "root", "password2"))
	_, _, err = svc.Login(ctx, models.LoginRequest{Username: "root", Password: "password2"})
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "ghost", "password2"), apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "root", strings.Repeat("p", 73)), apperrors.ErrBadRequest)
}

func TestEnsureSuperAdmin(t *testing.T) {
	store := repotest.New()
	svc := NewAdminService(store.Admins, newTokens())
	ctx := context.Background()

	created, err := svc.EnsureSuperAdmin(ctx, "root", "root@x.io", "password1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureSuperAdmin(ctx, "root2", "root2@x.io", "password1")
	require.NoError(t, err)
	assert.False(t, created)

	admins, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, models.RoleSuperAdmin, admins[0].Role)
}
