// Package repotest provides in-memory repositories for tests. They mirror the
// conditional semantics of the MongoDB stores: unique keys, guarded stock
// decrements, guarded promo increments and compare-and-set status updates.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every in-memory repository.
type Store struct {
	Admins     *Admins
	Users      *Users
	Products   *Products
	Carts      *Carts
	Orders     *Orders
	PromoCodes *PromoCodes
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		Admins:     &Admins{byID: map[primitive.ObjectID]models.Admin{}},
		Users:      &Users{byID: map[primitive.ObjectID]models.User{}},
		Products:   &Products{byID: map[primitive.ObjectID]models.Product{}},
		Carts:      &Carts{byUser: map[primitive.ObjectID]models.Cart{}},
		Orders:     &Orders{byID: map[primitive.ObjectID]models.Order{}},
		PromoCodes: &PromoCodes{byID: map[primitive.ObjectID]models.PromoCode{}},
	}
}

func notFound(what string) error {
	return apperrors.Newf(apperrors.ErrNotFound, "%s not found", what)
}

func duplicate(what string) error {
	return apperrors.Newf(apperrors.ErrConflict, "%s already exists", what)
}

func page[T any](items []T, p, limit int) []T {
	p, limit = repository.NormalizePage(p, limit)
	start := (p - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Admins is an in-memory repository.AdminRepository.
type Admins struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Admin
}

func (r *Admins) Create(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Username == admin.Username || a.Email == admin.Email {
			return duplicate("Admin")
		}
	}
	now := time.Now().UTC()
	admin.ID = primitive.NewObjectID()
	admin.CreatedAt, admin.UpdatedAt = now, now
	r.byID[admin.ID] = *admin
	return nil
}

func (r *Admins) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, notFound("Admin")
	}
	return &a, nil
}

func (r *Admins) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, notFound("Admin")
}

func (r *Admins) List(_ context.Context) ([]models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Admin, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *Admins) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return notFound("Admin")
	}
	a.Password = hash
	a.UpdatedAt = time.Now().UTC()
	r.byID[id] = a
	return nil
}

func (r *Admins) TouchLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.LastLoginAt = &at
		r.byID[id] = a
	}
	return nil
}

func (r *Admins) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return notFound("Admin")
	}
	delete(r.byID, id)
	return nil
}

func (r *Admins) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
}

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = models.NormalizeEmail(user.Email)
	for _, u := range r.byID {
		if u.Email == user.Email {
			return duplicate("User")
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = *user
	return nil
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, notFound("User")
	}
	return &u, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = models.NormalizeEmail(email)
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("User")
}

func (r *Users) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, notFound("User")
	}
	for k, v := range set {
		switch k {
		case "name":
			u.Name = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "password":
			u.Password = v.(string)
		case "address":
			addr := v.(models.Address)
			u.Address = &addr
		}
	}
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u
	return &u, nil
}

func (r *Users) List(_ context.Context, p, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		u.Password = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() > out[j].ID.Hex() })
	return page(out, p, limit), int64(len(out)), nil
}

func (r *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return notFound("User")
	}
	delete(r.byID, id)
	return nil
}

func (r *Users) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

var (
	_ repository.AdminRepository     = (*Admins)(nil)
	_ repository.UserRepository      = (*Users)(nil)
	_ repository.ProductRepository   = (*Products)(nil)
	_ repository.CartRepository      = (*Carts)(nil)
	_ repository.OrderRepository     = (*Orders)(nil)
	_ repository.PromoCodeRepository = (*PromoCodes)(nil)
)
