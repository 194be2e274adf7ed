package services

import (
	"context"
	"errors"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxLineQuantity = 100

// CartService manages the per-user cart.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the cart joined with current product data.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) view(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{UserID: cart.UserID, Items: make([]models.CartLine, 0, len(cart.Items))}
	var subtotal float64
	for _, item := range cart.Items {
		line := models.CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
		if p, ok := products[item.ProductID]; ok {
			line.Name = p.Name
			line.SKU = p.SKU
			line.Price = p.Price
			line.LineTotal = RoundCents(p.Price * float64(item.Quantity))
			line.Available = p.IsActive && p.Stock >= item.Quantity
			if len(p.Images) > 0 {
				line.Image = p.Images[0].URL
			}
		}
		if line.Available {
			subtotal += line.LineTotal
		}
		view.ItemCount += item.Quantity
		view.Items = append(view.Items, line)
	}
	view.Subtotal = RoundCents(subtotal)
	return view, nil
}

func (s *CartService) loadProduct(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.ErrNotFound.WithMessage("Product not found")
	}
	return product, nil
}

// lineLimit is the most of product one cart line may hold.
func lineLimit(product *models.Product) int {
	return min(product.Stock, maxLineQuantity)
}

func checkQuantity(product *models.Product, qty int) error {
	if qty > maxLineQuantity {
		return apperrors.Newf(apperrors.ErrBadRequest, "Quantity cannot exceed %d", maxLineQuantity)
	}
	if qty > product.Stock {
		return apperrors.Newf(apperrors.ErrInsufficientStock, "Only %d of %s left in stock", product.Stock, product.Name).
			WithDetails([]models.StockShortfall{{
				ProductID: product.ID.Hex(),
				Name:      product.Name,
				Requested: qty,
				Available: product.Stock,
			}})
	}
	return nil
}

// AddItem adds qty of a product, merging with an existing line. The merge
// and its bound are applied in one repository update.
func (s *CartService) AddItem(ctx context.Context, userID primitive.ObjectID, req models.AddCartItemRequest) (*models.CartView, error) {
	productID, err := repository.ParseID(req.ProductID, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkQuantity(product, req.Quantity); err != nil {
		return nil, err
	}

	cart, err := s.carts.AddItem(ctx, userID, productID, req.Quantity, lineLimit(product))
	if errors.Is(err, apperrors.ErrInsufficientStock) {
		return nil, s.mergeError(ctx, userID, product, req.Quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// mergeError explains why adding qty to the existing line was refused.
func (s *CartService) mergeError(ctx context.Context, userID primitive.ObjectID, product *models.Product, qty int) error {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return err
	}
	if idx := indexOf(cart, product.ID); idx >= 0 {
		qty += cart.Items[idx].Quantity
	}
	if err := checkQuantity(product, qty); err != nil {
		return err
	}
	return apperrors.ErrInsufficientStock.WithMessage("Not enough stock to add this item")
}

// UpdateItem sets the quantity of a line; zero removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*models.CartView, error) {
	if qty == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkQuantity(product, qty); err != nil {
		return nil, err
	}

	cart, err := s.carts.SetItemQuantity(ctx, userID, productID, qty)
	if err != nil {
		return nil, itemError(err)
	}
	return s.view(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.CartView, error) {
	cart, err := s.carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, itemError(err)
	}
	return s.view(ctx, cart)
}

func itemError(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrNotFound.WithMessage("Item not in cart")
	}
	return err
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	err := s.carts.Clear(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

func indexOf(cart *models.Cart, productID primitive.ObjectID) int {
	for i, item := range cart.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
