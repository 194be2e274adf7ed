package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Promo evaluation messages.
const (
	msgPromoNotFound = "promo code not found"
	msgPromoExpired  = "promo code has expired"
	msgPromoUsedUp   = "promo code usage limit reached"
)

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// EvaluatePromo checks p against subtotal at now. A nil or inactive code is
// reported as not found.
func EvaluatePromo(p *models.PromoCode, subtotal float64, now time.Time) models.PromoEvaluation {
	if p == nil || !p.IsActive {
		code := ""
		if p != nil {
			code = p.Code
		}
		return models.PromoEvaluation{Code: code, Message: msgPromoNotFound}
	}
	eval := models.PromoEvaluation{Code: p.Code, Type: p.Type}

	switch {
	case p.ExpiresAt != nil && !now.Before(*p.ExpiresAt):
		eval.Message = msgPromoExpired
	case p.MaxUses > 0 && p.UsedCount >= p.MaxUses:
		eval.Message = msgPromoUsedUp
	case subtotal < p.MinOrderValue:
		eval.Message = fmt.Sprintf("minimum order value of %.2f required", p.MinOrderValue)
	default:
		var discount float64
		if p.Type == models.PromoPercentage {
			discount = subtotal * p.Value / 100
		} else {
			discount = p.Value
		}
		eval.Valid = true
		eval.Discount = RoundCents(math.Min(discount, subtotal))
	}
	return eval
}

// PromoService manages promo codes.
type PromoService struct {
	promos repository.PromoCodeRepository
	now    func() time.Time
}

func NewPromoService(promos repository.PromoCodeRepository) *PromoService {
	return &PromoService{promos: promos, now: time.Now}
}

// Validate evaluates code against subtotal without consuming a use.
func (s *PromoService) Validate(ctx context.Context, code string, subtotal float64) (models.PromoEvaluation, error) {
	code = models.NormalizePromoCode(code)
	promo, err := s.promos.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.PromoEvaluation{Code: code, Message: msgPromoNotFound}, nil
		}
		return models.PromoEvaluation{}, err
	}
	return EvaluatePromo(promo, RoundCents(subtotal), s.now()), nil
}

func checkPromoValue(t models.PromoType, value float64) error {
	if value <= 0 {
		return apperrors.ErrBadRequest.WithMessage("Promo value must be greater than 0")
	}
	if t == models.PromoPercentage && value > 100 {
		return apperrors.ErrBadRequest.WithMessage("Percentage value must be at most 100")
	}
	return nil
}

func (s *PromoService) Create(ctx context.Context, req models.CreatePromoCodeRequest) (*models.PromoCode, error) {
	if err := checkPromoValue(req.Type, req.Value); err != nil {
		return nil, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	promo := &models.PromoCode{
		Code:          models.NormalizePromoCode(req.Code),
		Type:          req.Type,
		Value:         req.Value,
		MinOrderValue: req.MinOrderValue,
		MaxUses:       req.MaxUses,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      active,
	}
	if err := s.promos.Create(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

func (s *PromoService) Update(ctx context.Context, id primitive.ObjectID, req models.UpdatePromoCodeRequest) (*models.PromoCode, error) {
	if req.ClearExpiry && req.ExpiresAt != nil {
		return nil, apperrors.ErrBadRequest.WithMessage("Send either expires_at or clear_expiry, not both")
	}
	set := req.Fields()
	if len(set) == 0 {
		return nil, apperrors.ErrBadRequest.WithMessage("No fields to update")
	}
	if req.Value != nil {
		current, err := s.promos.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := checkPromoValue(current.Type, *req.Value); err != nil {
			return nil, err
		}
	}
	return s.promos.Update(ctx, id, set)
}

func (s *PromoService) List(ctx context.Context) ([]models.PromoCode, error) {
	return s.promos.List(ctx)
}

func (s *PromoService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.promos.Delete(ctx, id)
}
