package services

import (
	"context"

	"storefront-backend/models"
	"storefront-backend/repository"
)

// StatsService assembles the admin dashboard summary.
type StatsService struct {
	admins   repository.AdminRepository
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewStatsService(admins repository.AdminRepository, users repository.UserRepository, products repository.ProductRepository, orders repository.OrderRepository) *StatsService {
	return &StatsService{admins: admins, users: users, products: products, orders: orders}
}

func (s *StatsService) Get(ctx context.Context) (*models.Stats, error) {
	var (
		stats models.Stats
		err   error
	)
	if stats.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalAdmins, err = s.admins.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}
	if stats.InventoryValue, err = s.products.InventoryValue(ctx); err != nil {
		return nil, err
	}
	if stats.Revenue, err = s.orders.Revenue(ctx); err != nil {
		return nil, err
	}
	if stats.OrdersByStatus, err = s.orders.CountByStatus(ctx); err != nil {
		return nil, err
	}
	stats.InventoryValue = RoundCents(stats.InventoryValue)
	stats.Revenue = RoundCents(stats.Revenue)
	return &stats, nil
}
