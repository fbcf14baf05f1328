package repository

import (
	"context"

	"storefront/internal/domain"
)

// OrderFilter scopes order listings. UserID zero means every user.
type OrderFilter struct {
	UserID uint64
	Status domain.OrderStatus
	Page   int
	Limit  int
}

type OrderRepository interface {
	// CreateWithItems inserts the order and its items in one transaction.
	CreateWithItems(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	List(ctx context.Context, f OrderFilter) ([]domain.Order, int64, error)
	UpdateShipping(ctx context.Context, id uint64, s domain.ShippingInfo) error
	// UpdateStatus moves the order from one status to another and reports
	// whether a row matched the expected current status.
	UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) (bool, error)
	// UpdateStatusAndShipping is UpdateStatus that also rewrites the shipping
	// snapshot in the same statement.
	UpdateStatusAndShipping(ctx context.Context, id uint64, from, to domain.OrderStatus, s domain.ShippingInfo) (bool, error)
	Delete(ctx context.Context, id uint64) error
}
