package services

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type CartService struct {
	carts    repository.CartRepository
	products infra.ProductReader
}

func NewCartService(carts repository.CartRepository, products infra.ProductReader) *CartService {
	return &CartService{carts: carts, products: products}
}

// Add puts quantity units of the product in the session's cart.
func (s *CartService) Add(ctx context.Context, sessionID string, productID uint64, quantity int) error {
	if quantity < 1 {
		return domain.Invalid("quantity", "ensure this value is greater than or equal to 1")
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product %d: %w", productID, err)
	}
	if p == nil {
		return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	cart[domain.CartKey(productID)] += quantity
	return s.carts.Save(ctx, sessionID, cart)
}

// Adjust applies a cart action to an existing entry. Actions on a product
// that is not in the cart change nothing.
func (s *CartService) Adjust(ctx context.Context, sessionID, productKey, action string) error {
	a, err := domain.ParseCartAction(action)
	if err != nil {
		return err
	}

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, ok := cart[productKey]; !ok {
		return nil
	}
	cart.Apply(productKey, a)
	return s.carts.Save(ctx, sessionID, cart)
}

func (s *CartService) Resolve(ctx context.Context, sessionID string) (*domain.ResolvedCart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.ResolveCart(ctx, cart)
}

// ResolveCart prices a cart against the current catalog with a single batch
// lookup. Entries whose product no longer exists are dropped.
func (s *CartService) ResolveCart(ctx context.Context, cart domain.Cart) (*domain.ResolvedCart, error) {
	out := &domain.ResolvedCart{Items: []domain.LineItem{}, Total: decimal.Zero}

	ids := cart.ProductIDs()
	if len(ids) == 0 {
		return out, nil
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}

	for _, p := range products {
		qty := cart[domain.CartKey(p.ID)]
		if qty < 1 {
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		out.Items = append(out.Items, domain.LineItem{Product: p, Quantity: qty, Subtotal: subtotal})
		out.Total = out.Total.Add(subtotal)
	}
	return out, nil
}

func (s *CartService) Count(ctx context.Context, sessionID string) (int, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.carts.Delete(ctx, sessionID)
}

// Move re-keys a cart when its session id is rotated.
func (s *CartService) Move(ctx context.Context, fromSessionID, toSessionID string) error {
	if fromSessionID == "" || fromSessionID == toSessionID {
		return nil
	}
	cart, err := s.carts.Load(ctx, fromSessionID)
	if err != nil {
		return err
	}
	if len(cart) == 0 {
		return nil
	}
	if err := s.carts.Save(ctx, toSessionID, cart); err != nil {
		return err
	}
	return s.carts.Delete(ctx, fromSessionID)
}
