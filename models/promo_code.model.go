package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PromoType is the kind of discount a promo code gives.
type PromoType string

const (
	PromoPercentage PromoType = "percentage"
	PromoFixed      PromoType = "fixed"
)

// PromoCode is a discount code.
type PromoCode struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Code          string             `json:"code" bson:"code"`
	Type          PromoType          `json:"type" bson:"type"`
	Value         float64            `json:"value" bson:"value"`
	MinOrderValue float64            `json:"min_order_value" bson:"min_order_value"`
	MaxUses       int                `json:"max_uses" bson:"max_uses"` // 0 = unlimited
	UsedCount     int                `json:"used_count" bson:"used_count"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePromoCodeRequest is the payload for creating a promo code.
type CreatePromoCodeRequest struct {
	Code          string     `json:"code" binding:"required,min=3,max=32,alphanum"`
	Type          PromoType  `json:"type" binding:"required,oneof=percentage fixed"`
	Value         float64    `json:"value" binding:"required,gt=0"`
	MinOrderValue float64    `json:"min_order_value" binding:"gte=0"`
	MaxUses       int        `json:"max_uses" binding:"gte=0"`
	ExpiresAt     *time.Time `json:"expires_at"`
	IsActive      *bool      `json:"is_active"`
}

// UpdatePromoCodeRequest is a partial promo code update.
type UpdatePromoCodeRequest struct {
	Value         *float64   `json:"value" binding:"omitempty,gt=0"`
	MinOrderValue *float64   `json:"min_order_value" binding:"omitempty,gte=0"`
	MaxUses       *int       `json:"max_uses" binding:"omitempty,gte=0"`
	ExpiresAt     *time.Time `json:"expires_at"`
	ClearExpiry   bool       `json:"clear_expiry"`
	IsActive      *bool      `json:"is_active"`
}

// Fields returns the $set document for the non-nil fields. ClearExpiry
// stores a null expiry so the code never lapses.
func (r *UpdatePromoCodeRequest) Fields() bson.M {
	set := bson.M{}
	if r.Value != nil {
		set["value"] = *r.Value
	}
	if r.MinOrderValue != nil {
		set["min_order_value"] = *r.MinOrderValue
	}
	if r.MaxUses != nil {
		set["max_uses"] = *r.MaxUses
	}
	if r.ClearExpiry {
		set["expires_at"] = nil
	} else if r.ExpiresAt != nil {
		set["expires_at"] = *r.ExpiresAt
	}
	if r.IsActive != nil {
		set["is_active"] = *r.IsActive
	}
	return set
}

// ValidatePromoRequest checks a code against a subtotal.
type ValidatePromoRequest struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal" binding:"required,gt=0"`
}

// PromoEvaluation is the outcome of checking a code against a subtotal.
type PromoEvaluation struct {
	Valid    bool      `json:"valid"`
	Code     string    `json:"code"`
	Type     PromoType `json:"type,omitempty"`
	Discount float64   `json:"discount"`
	Message  string    `json:"message,omitempty"`
}
