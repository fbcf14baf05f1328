package infra

import (
	"context"

	"storefront/internal/domain"
)

// ProductReader is the read side of the catalog that carts and checkout use.
type ProductReader interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

// ProductCache is told when a product changes so stale copies are dropped.
type ProductCache interface {
	Invalidate(ctx context.Context, id uint64)
}

var (
	_ ProductReader = (*CachedCatalog)(nil)
	_ ProductCache  = (*CachedCatalog)(nil)
)
