package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Products is an in-memory repository.ProductRepository.
type Products struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Product
	// FailReserveAfter makes ReserveStock fail once this many reservations succeeded; 0 disables.
	FailReserveAfter int
	reserved         int
}

func (r *Products) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product.SKU = models.NormalizeSKU(product.SKU)
	for _, p := range r.byID {
		if p.SKU == product.SKU {
			return duplicate("Product")
		}
	}
	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt, product.UpdatedAt = now, now
	if product.Images == nil {
		product.Images = []models.ProductImage{}
	}
	r.byID[product.ID] = *product
	return nil
}

func (r *Products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, notFound("Product")
	}
	return &p, nil
}

func (r *Products) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func matches(p models.Product, q models.ProductQuery) bool {
	if !q.IncludeInactive && !p.IsActive {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Featured != nil && p.IsFeatured != *q.Featured {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.Search != "" {
		s := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), s) &&
			!strings.Contains(strings.ToLower(p.Description), s) &&
			!strings.Contains(strings.ToLower(p.SKU), s) {
			return false
		}
	}
	return true
}

func (r *Products) List(_ context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Product{}
	for _, p := range r.byID {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch q.Sort {
		case models.SortPriceAsc:
			return out[i].Price < out[j].Price
		case models.SortPriceDesc:
			return out[i].Price > out[j].Price
		case models.SortName:
			return out[i].Name < out[j].Name
		default:
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
	})
	return page(out, q.Page, q.Limit), int64(len(out)), nil
}

func (r *Products) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, notFound("Product")
	}
	if sku, ok := set["sku"].(string); ok {
		for otherID, other := range r.byID {
			if otherID != id && other.SKU == sku {
				return nil, duplicate("Product")
			}
		}
	}
	for k, v := range set {
		switch k {
		case "name":
			p.Name = v.(string)
		case "sku":
			p.SKU = v.(string)
		case "description":
			p.Description = v.(string)
		case "category":
			p.Category = v.(string)
		case "price":
			p.Price = v.(float64)
		case "stock":
			p.Stock = v.(int)
		case "is_featured":
			p.IsFeatured = v.(bool)
		case "is_active":
			p.IsActive = v.(bool)
		case "images":
			p.Images = v.([]models.ProductImage)
		}
	}
	p.UpdatedAt = time.Now().UTC()
	r.byID[id] = p
	return &p, nil
}

func (r *Products) AddImage(_ context.Context, id primitive.ObjectID, image models.ProductImage) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, notFound("Product")
	}
	p.Images = append(p.Images, image)
	r.byID[id] = p
	return &p, nil
}

func (r *Products) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return notFound("Product")
	}
	delete(r.byID, id)
	return nil
}

func (r *Products) ReserveStock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok || p.Stock < qty || (r.FailReserveAfter > 0 && r.reserved >= r.FailReserveAfter) {
		return apperrors.ErrInsufficientStock.WithDetails([]string{id.Hex()})
	}
	p.Stock -= qty
	r.byID[id] = p
	r.reserved++
	return nil
}

func (r *Products) ReleaseStock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		p.Stock += qty
		r.byID[id] = p
	}
	return nil
}

func (r *Products) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *Products) InventoryValue(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, p := range r.byID {
		total += p.Price * float64(p.Stock)
	}
	return total, nil
}

// Carts is an in-memory repository.CartRepository.
type Carts struct {
	mu     sync.Mutex
	byUser map[primitive.ObjectID]models.Cart
}

func (r *Carts) Get(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byUser[userID]
	if !ok {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c, nil
}

func (r *Carts) AddItem(_ context.Context, userID, productID primitive.ObjectID, qty, limit int) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.byUser[userID]
	c.UserID = userID
	c.Items = append([]models.CartItem{}, c.Items...)
	idx := lineIndex(c.Items, productID)
	switch {
	case idx < 0 && qty > limit, idx >= 0 && c.Items[idx].Quantity+qty > limit:
		return nil, apperrors.ErrInsufficientStock
	case idx < 0:
		c.Items = append(c.Items, models.CartItem{ProductID: productID, Quantity: qty})
	default:
		c.Items[idx].Quantity += qty
	}
	return r.store(c), nil
}

func (r *Carts) SetItemQuantity(_ context.Context, userID, productID primitive.ObjectID, qty int) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byUser[userID]
	idx := lineIndex(c.Items, productID)
	if !ok || idx < 0 {
		return nil, notFound("Cart item")
	}
	c.Items = append([]models.CartItem{}, c.Items...)
	c.Items[idx].Quantity = qty
	return r.store(c), nil
}

func (r *Carts) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byUser[userID]
	idx := lineIndex(c.Items, productID)
	if !ok || idx < 0 {
		return nil, notFound("Cart item")
	}
	items := make([]models.CartItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:idx]...)
	c.Items = append(items, c.Items[idx+1:]...)
	return r.store(c), nil
}

// store saves c and returns a copy safe to hand out. Callers hold mu.
func (r *Carts) store(c models.Cart) *models.Cart {
	c.UpdatedAt = time.Now().UTC()
	r.byUser[c.UserID] = c
	out := c
	out.Items = append([]models.CartItem{}, c.Items...)
	return &out
}

func lineIndex(items []models.CartItem, productID primitive.ObjectID) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (r *Carts) Clear(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}
