package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:    {OrderPaid: true, OrderCancelled: true},
	OrderPaid:       {OrderProcessing: true, OrderCancelled: true, OrderRefunded: true},
	OrderProcessing: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:    {OrderDelivered: true},
	OrderDelivered:  {OrderRefunded: true},
	OrderCancelled:  {},
	OrderRefunded:   {},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Payment methods accepted at checkout.
const (
	PaymentCard           = "card"
	PaymentCashOnDelivery = "cod"
	PaymentPayPal         = "paypal"
)

// OrderItem is a product snapshot taken at checkout.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Name      string             `json:"name" bson:"name"`
	SKU       string             `json:"sku" bson:"sku"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// StatusChange records one status transition.
type StatusChange struct {
	Status OrderStatus `json:"status" bson:"status"`
	Note   string      `json:"note,omitempty" bson:"note,omitempty"`
	By     string      `json:"by,omitempty" bson:"by,omitempty"`
	At     time.Time   `json:"at" bson:"at"`
}

// Order is a placed order.
type Order struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OrderNumber     string             `json:"order_number" bson:"order_number"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items           []OrderItem        `json:"items" bson:"items"`
	Subtotal        float64            `json:"subtotal" bson:"subtotal"`
	Discount        float64            `json:"discount" bson:"discount"`
	Total           float64            `json:"total" bson:"total"`
	PromoCode       string             `json:"promo_code,omitempty" bson:"promo_code,omitempty"`
	ShippingAddress Address            `json:"shipping_address" bson:"shipping_address"`
	PaymentMethod   string             `json:"payment_method" bson:"payment_method"`
	Status          OrderStatus        `json:"status" bson:"status"`
	StatusHistory   []StatusChange     `json:"status_history" bson:"status_history"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// CheckoutRequest turns the caller's cart into an order.
type CheckoutRequest struct {
	ShippingAddress Address `json:"shipping_address"`
	PaymentMethod   string  `json:"payment_method" binding:"required,oneof=card cod paypal"`
	PromoCode       string  `json:"promo_code" binding:"omitempty,max=32"`
}

// UpdateOrderStatusRequest is the admin status change payload.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Note   string      `json:"note" binding:"max=500"`
}

// OrderQuery filters the admin order list.
type OrderQuery struct {
	Status OrderStatus
	Page   int
	Limit  int
}

// OrderList is one page of orders.
type OrderList struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	Pages  int     `json:"pages"`
}

// StockShortfall describes a cart line that cannot be fulfilled.
type StockShortfall struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}
