package services

import (
	"context"
	"errors"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerService handles storefront accounts.
type CustomerService struct {
	users  repository.UserRepository
	carts  repository.CartRepository
	tokens *TokenService
}

func NewCustomerService(users repository.UserRepository, carts repository.CartRepository, tokens *TokenService) *CustomerService {
	return &CustomerService{users: users, carts: carts, tokens: tokens}
}

// Register creates a customer and signs them in.
func (s *CustomerService) Register(ctx context.Context, req models.RegisterUserRequest) (*models.User, string, error) {
	if err := ValidatePassword(req.Password); err != nil {
		return nil, "", err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:     req.Name,
		Email:    models.NormalizeEmail(req.Email),
		Phone:    req.Phone,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, "", apperrors.ErrConflict.WithMessage("Email is already registered")
		}
		return nil, "", err
	}

	token, err := s.tokens.IssueClientToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials and returns the customer with a fresh token.
func (s *CustomerService) Login(ctx context.Context, req models.ClientLoginRequest) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !CheckPassword(user.Password, req.Password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueClientToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *CustomerService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateProfile applies the non-nil fields of req.
func (s *CustomerService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Address != nil {
		set["address"] = *req.Address
	}
	if len(set) == 0 {
		return nil, apperrors.ErrBadRequest.WithMessage("No fields to update")
	}
	return s.users.Update(ctx, id, set)
}

// ChangePassword replaces the password after checking the current one.
func (s *CustomerService) ChangePassword(ctx context.Context, id primitive.ObjectID, req models.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials.WithMessage("Current password is incorrect")
	}
	if err := ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, id, bson.M{"password": hash})
	return err
}

func (s *CustomerService) List(ctx context.Context, page, limit int) (*models.UserList, error) {
	page, limit = repository.NormalizePage(page, limit)
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &models.UserList{
		Users: users,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: models.PageCount(total, limit),
	}, nil
}

// Delete removes a customer and their cart. Orders are kept.
func (s *CustomerService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	return s.carts.Clear(ctx, id)
}
