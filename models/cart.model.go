package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a product reference with a quantity.
type CartItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// Cart is the stored cart of one user.
type Cart struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items     []CartItem         `json:"items" bson:"items"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// CartLine is a cart item joined with its product.
type CartLine struct {
	ProductID primitive.ObjectID `json:"product_id"`
	Name      string             `json:"name"`
	SKU       string             `json:"sku"`
	Image     string             `json:"image,omitempty"`
	Price     float64            `json:"price"`
	Quantity  int                `json:"quantity"`
	LineTotal float64            `json:"line_total"`
	// Available is false when the product was removed, hidden or is short of stock.
	Available bool `json:"available"`
}

// CartView is the cart as returned to the storefront.
type CartView struct {
	UserID    primitive.ObjectID `json:"user_id"`
	Items     []CartLine         `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  float64            `json:"subtotal"`
}

// AddCartItemRequest adds a product to the cart.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=100"`
}

// UpdateCartItemRequest sets a quantity; zero removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=100"`
}
