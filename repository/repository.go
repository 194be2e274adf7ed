// Package repository holds the MongoDB stores, one per collection.
package repository

import (
	"context"
	"time"

	"storefront-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	CollectionAdmins     = "admins"
	CollectionUsers      = "users"
	CollectionProducts   = "products"
	CollectionCarts      = "carts"
	CollectionOrders     = "orders"
	CollectionPromoCodes = "promo_codes"
)

// AdminRepository stores back-office accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository stores customers.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// ProductRepository stores the catalogue.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	List(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error)
	AddImage(ctx context.Context, id primitive.ObjectID, image models.ProductImage) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ReserveStock decrements stock only if at least qty is available.
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
	Count(ctx context.Context) (int64, error)
	InventoryValue(ctx context.Context) (float64, error)
}

// CartRepository stores one cart per user.
type CartRepository interface {
	// Get returns the user's cart, or an empty cart if none was saved.
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// AddItem adds qty to the product's line, creating the cart or line as
	// needed. It fails with ErrInsufficientStock when the line would exceed limit.
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty, limit int) (*models.Cart, error)
	// SetItemQuantity replaces the quantity of an existing line.
	SetItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// OrderRepository stores orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, q models.OrderQuery) ([]models.Order, int64, error)
	// UpdateStatus moves an order from one status to another; it fails with
	// ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.OrderStatus, change models.StatusChange) (*models.Order, error)
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (float64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// PromoCodeRepository stores promo codes.
type PromoCodeRepository interface {
	Create(ctx context.Context, promo *models.PromoCode) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error)
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.PromoCode, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// IncrementUse consumes one use if the code is active and not exhausted.
	IncrementUse(ctx context.Context, code string) error
	DecrementUse(ctx context.Context, code string) error
}
