package services

import (
	"context"
	"errors"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/logger"
	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AdminService manages back-office accounts and their sessions.
type AdminService struct {
	admins repository.AdminRepository
	tokens *TokenService
	now    func() time.Time
}

func NewAdminService(admins repository.AdminRepository, tokens *TokenService) *AdminService {
	return &AdminService{admins: admins, tokens: tokens, now: time.Now}
}

// Login checks credentials and returns the admin with a fresh token.
func (s *AdminService) Login(ctx context.Context, req models.LoginRequest) (*models.Admin, string, error) {
	admin, err := s.admins.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !CheckPassword(admin.Password, req.Password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAdminToken(admin)
	if err != nil {
		return nil, "", err
	}

	at := s.now().UTC()
	if err := s.admins.TouchLogin(ctx, admin.ID, at); err != nil {
		logger.Warn(ctx, "failed to record admin login", zap.Error(err))
	} else {
		admin.LastLoginAt = &at
	}
	return admin, token, nil
}

func (s *AdminService) Get(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return s.admins.FindByID(ctx, id)
}

func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	return s.admins.List(ctx)
}

// Create adds an admin account; role defaults to admin.
func (s *AdminService) Create(ctx context.Context, req models.CreateAdminRequest) (*models.Admin, error) {
	if err := checkPasswordLength(req.Password); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if role != models.RoleAdmin && role != models.RoleSuperAdmin {
		return nil, apperrors.Newf(apperrors.ErrBadRequest, "Unknown role %q", role)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Username: req.Username,
		Email:    models.NormalizeEmail(req.Email),
		Password: hash,
		Role:     role,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Delete removes an admin. Admins cannot delete themselves.
func (s *AdminService) Delete(ctx context.Context, actorID, id primitive.ObjectID) error {
	if actorID == id {
		return apperrors.ErrBadRequest.WithMessage("You cannot delete your own account")
	}
	return s.admins.Delete(ctx, id)
}

func (s *AdminService) DeleteByUsername(ctx context.Context, username string) error {
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.admins.Delete(ctx, admin.ID)
}

// ResetPassword replaces the password of the named admin.
func (s *AdminService) ResetPassword(ctx context.Context, username, password string) error {
	if err := checkPasswordLength(password); err != nil {
		return err
	}
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.admins.UpdatePassword(ctx, admin.ID, hash)
}

// EnsureSuperAdmin creates a superadmin when no admin account exists yet.
// It reports whether an account was created.
func (s *AdminService) EnsureSuperAdmin(ctx context.Context, username, email, password string) (bool, error) {
	n, err := s.admins.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.Create(ctx, models.CreateAdminRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     models.RoleSuperAdmin,
	})
	return err == nil, err
}
