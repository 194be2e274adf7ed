package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Orders is an in-memory repository.OrderRepository.
type Orders struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Order
	// FailCreate, when set, is returned by Create.
	FailCreate error
}

func (r *Orders) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	for _, o := range r.byID {
		if o.OrderNumber == order.OrderNumber {
			return duplicate("Order")
		}
	}
	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.byID[order.ID] = *order
	return nil
}

func (r *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, notFound("Order")
	}
	return &o, nil
}

func (r *Orders) sorted(keep func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range r.byID {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() > out[j].ID.Hex() })
	return out
}

func (r *Orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *Orders) List(_ context.Context, q models.OrderQuery) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted(func(o models.Order) bool { return q.Status == "" || o.Status == q.Status })
	return page(out, q.Page, q.Limit), int64(len(out)), nil
}

func (r *Orders) UpdateStatus(_ context.Context, id primitive.ObjectID, from models.OrderStatus, change models.StatusChange) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, notFound("Order")
	}
	if o.Status != from {
		return nil, apperrors.Newf(apperrors.ErrConflict, "Order is no longer %s", from)
	}
	o.Status = change.Status
	o.StatusHistory = append(o.StatusHistory, change)
	o.UpdatedAt = change.At
	r.byID[id] = o
	return &o, nil
}

func (r *Orders) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *Orders) Revenue(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, o := range r.byID {
		if o.Status != models.OrderCancelled && o.Status != models.OrderRefunded {
			total += o.Total
		}
	}
	return total, nil
}

func (r *Orders) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, o := range r.byID {
		out[string(o.Status)]++
	}
	return out, nil
}

// PromoCodes is an in-memory repository.PromoCodeRepository.
type PromoCodes struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.PromoCode
}

func (r *PromoCodes) Create(_ context.Context, promo *models.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	promo.Code = models.NormalizePromoCode(promo.Code)
	for _, p := range r.byID {
		if p.Code == promo.Code {
			return duplicate("Promo code")
		}
	}
	now := time.Now().UTC()
	promo.ID = primitive.NewObjectID()
	promo.CreatedAt, promo.UpdatedAt = now, now
	r.byID[promo.ID] = *promo
	return nil
}

func (r *PromoCodes) FindByID(_ context.Context, id primitive.ObjectID) (*models.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, notFound("Promo code")
	}
	return &p, nil
}

func (r *PromoCodes) find(code string) (primitive.ObjectID, models.PromoCode, bool) {
	code = models.NormalizePromoCode(code)
	for id, p := range r.byID {
		if p.Code == code {
			return id, p, true
		}
	}
	return primitive.NilObjectID, models.PromoCode{}, false
}

func (r *PromoCodes) FindByCode(_ context.Context, code string) (*models.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, p, ok := r.find(code)
	if !ok {
		return nil, notFound("Promo code")
	}
	return &p, nil
}

func (r *PromoCodes) List(_ context.Context) ([]models.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PromoCode, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *PromoCodes) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, notFound("Promo code")
	}
	for k, v := range set {
		switch k {
		case "value":
			p.Value = v.(float64)
		case "min_order_value":
			p.MinOrderValue = v.(float64)
		case "max_uses":
			p.MaxUses = v.(int)
		case "expires_at":
			if t, ok := v.(time.Time); ok {
				p.ExpiresAt = &t
			} else {
				p.ExpiresAt = nil
			}
		case "is_active":
			p.IsActive = v.(bool)
		}
	}
	p.UpdatedAt = time.Now().UTC()
	r.byID[id] = p
	return &p, nil
}

func (r *PromoCodes) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return notFound("Promo code")
	}
	delete(r.byID, id)
	return nil
}

func (r *PromoCodes) IncrementUse(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, p, ok := r.find(code)
	if !ok || !p.IsActive || (p.MaxUses > 0 && p.UsedCount >= p.MaxUses) {
		return apperrors.ErrInvalidPromo.WithMessage("promo code usage limit reached")
	}
	p.UsedCount++
	r.byID[id] = p
	return nil
}

func (r *PromoCodes) DecrementUse(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, p, ok := r.find(code); ok && p.UsedCount > 0 {
		p.UsedCount--
		r.byID[id] = p
	}
	return nil
}
