package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/events"
	"storefront-backend/logger"
	"storefront-backend/models"
	"storefront-backend/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderService turns carts into orders and drives the order lifecycle.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	carts     repository.CartRepository
	promos    repository.PromoCodeRepository
	cache     ProductCache
	publisher events.Publisher
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	promos repository.PromoCodeRepository,
	cache ProductCache,
	publisher events.Publisher,
) *OrderService {
	if cache == nil {
		cache = NopCache{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		orders:    orders,
		products:  products,
		carts:     carts,
		promos:    promos,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

// NewOrderNumber returns an order number of the form ORD-YYYYMMDD-XXXXXXXX.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), suffix)
}

// Checkout places an order for the user's cart. Stock and the promo use are
// taken with conditional updates and given back if a later step fails.
func (s *OrderService) Checkout(ctx context.Context, userID primitive.ObjectID, req models.CheckoutRequest) (*models.Order, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.ErrBadRequest.WithMessage("cart is empty")
	}

	items, subtotal, err := s.priceCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	var discount float64
	promoCode := models.NormalizePromoCode(req.PromoCode)
	if promoCode != "" {
		promo, err := s.promos.FindByCode(ctx, promoCode)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		eval := EvaluatePromo(promo, subtotal, s.now())
		if !eval.Valid {
			return nil, apperrors.ErrInvalidPromo.WithMessage(eval.Message)
		}
		discount = eval.Discount
	}

	reserved, err := s.reserve(ctx, items)
	if err != nil {
		return nil, err
	}

	if promoCode != "" {
		if err := s.promos.IncrementUse(ctx, promoCode); err != nil {
			s.release(ctx, reserved)
			return nil, err
		}
	}

	now := s.now().UTC()
	order := &models.Order{
		OrderNumber:     NewOrderNumber(now),
		UserID:          userID,
		Items:           items,
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           RoundCents(subtotal - discount),
		PromoCode:       promoCode,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderPending,
		StatusHistory: []models.StatusChange{{
			Status: models.OrderPending,
			Note:   "Order placed",
			By:     userID.Hex(),
			At:     now,
		}},
		CreatedAt: now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, reserved)
		if promoCode != "" {
			s.releasePromo(ctx, promoCode)
		}
		return nil, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		logger.Warn(ctx, "failed to clear cart after checkout", zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}
	s.invalidate(ctx, reserved)
	s.publishCreated(ctx, order)
	logger.Info(ctx, "order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

// priceCart snapshots the cart's products and reports every stock shortfall at once.
func (s *OrderService) priceCart(ctx context.Context, cart *models.Cart) ([]models.OrderItem, float64, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	var shortfalls []models.StockShortfall
	var subtotal float64
	for _, line := range cart.Items {
		p, ok := products[line.ProductID]
		if !ok || !p.IsActive {
			return nil, 0, apperrors.Newf(apperrors.ErrNotFound, "Product %s is no longer available", line.ProductID.Hex())
		}
		if p.Stock < line.Quantity {
			shortfalls = append(shortfalls, models.StockShortfall{
				ProductID: p.ID.Hex(),
				Name:      p.Name,
				Requested: line.Quantity,
				Available: p.Stock,
			})
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
		subtotal += p.Price * float64(line.Quantity)
	}
	if len(shortfalls) > 0 {
		return nil, 0, apperrors.ErrInsufficientStock.WithDetails(shortfalls)
	}
	return items, RoundCents(subtotal), nil
}

func (s *OrderService) reserve(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	reserved := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if err := s.products.ReserveStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.release(ctx, reserved)
			if errors.Is(err, apperrors.ErrInsufficientStock) {
				return nil, apperrors.Newf(apperrors.ErrInsufficientStock, "Insufficient stock for %s", item.Name).
					WithDetails([]models.StockShortfall{{ProductID: item.ProductID.Hex(), Name: item.Name, Requested: item.Quantity}})
			}
			return nil, err
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

func (s *OrderService) release(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := s.products.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error(ctx, "failed to release stock", err,
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("quantity", item.Quantity),
			)
		}
	}
	s.invalidate(ctx, items)
}

// invalidate drops cached copies of products whose stock just moved.
func (s *OrderService) invalidate(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		s.cache.Invalidate(ctx, item.ProductID.Hex())
	}
}

func (s *OrderService) releasePromo(ctx context.Context, code string) {
	if err := s.promos.DecrementUse(ctx, code); err != nil {
		logger.Error(ctx, "failed to release promo use", err, zap.String("code", code))
	}
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// GetForUser returns an order owned by userID; other users' orders are reported missing.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.ErrNotFound.WithMessage("Order not found")
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

func (s *OrderService) List(ctx context.Context, q models.OrderQuery) (*models.OrderList, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperrors.Newf(apperrors.ErrBadRequest, "Unknown order status %q", q.Status)
	}
	q.Page, q.Limit = repository.NormalizePage(q.Page, q.Limit)
	orders, total, err := s.orders.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.OrderList{
		Orders: orders,
		Total:  total,
		Page:   q.Page,
		Limit:  q.Limit,
		Pages:  models.PageCount(total, q.Limit),
	}, nil
}

// Cancel lets a customer cancel their own pending order.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, apperrors.ErrInvalidTransition.WithMessage("Only pending orders can be cancelled")
	}
	return s.transition(ctx, order, models.OrderCancelled, "Cancelled by customer", userID.Hex())
}

// UpdateStatus moves an order along the lifecycle on behalf of an admin.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, req models.UpdateOrderStatusRequest, by string) (*models.Order, error) {
	if !req.Status.Valid() {
		return nil, apperrors.Newf(apperrors.ErrBadRequest, "Unknown order status %q", req.Status)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, req.Status, req.Note, by)
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus, note, by string) (*models.Order, error) {
	from := order.Status
	if !models.CanTransition(from, to) {
		return nil, apperrors.Newf(apperrors.ErrInvalidTransition, "Cannot move order from %s to %s", from, to)
	}

	change := models.StatusChange{Status: to, Note: note, By: by, At: s.now().UTC()}
	updated, err := s.orders.UpdateStatus(ctx, order.ID, from, change)
	if err != nil {
		return nil, err
	}

	if to == models.OrderCancelled {
		s.release(ctx, updated.Items)
		if updated.PromoCode != "" {
			s.releasePromo(ctx, updated.PromoCode)
		}
	}
	s.publishStatusChanged(ctx, updated, from, by)
	return updated, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	lines := make([]events.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, events.OrderLine{ProductID: item.ProductID.Hex(), Quantity: item.Quantity, Price: item.Price})
	}
	s.publish(ctx, events.OrderCreated, order.ID.Hex(), events.OrderCreatedPayload{
		OrderID:     order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID.Hex(),
		Items:       lines,
		Total:       order.Total,
		PromoCode:   order.PromoCode,
	})
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, from models.OrderStatus, by string) {
	s.publish(ctx, events.OrderStatusChanged, order.ID.Hex(), events.StatusChangedPayload{
		OrderID:     order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		From:        string(from),
		To:          string(order.Status),
		By:          by,
	})
}

// publish never fails the caller; the order is already committed.
func (s *OrderService) publish(ctx context.Context, eventType, key string, payload any) {
	ev, err := events.NewEvent(eventType, key, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, ev)
	}
	if err != nil {
		logger.Warn(ctx, "failed to publish event", zap.String("event_type", eventType), zap.String("order_id", key), zap.Error(err))
	}
}
