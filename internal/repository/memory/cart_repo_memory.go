// Package memory keeps carts in process memory. It is meant for tests and
// single-instance development runs where redis is not available.
package memory

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type cartRepo struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func NewCartRepository() repository.CartRepository {
	return &cartRepo{carts: make(map[string]domain.Cart)}
}

func (r *cartRepo) Load(_ context.Context, sessionID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.carts[sessionID]), nil
}

func (r *cartRepo) Save(_ context.Context, sessionID string, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(cart) == 0 {
		delete(r.carts, sessionID)
		return nil
	}
	r.carts[sessionID] = clone(cart)
	return nil
}

func (r *cartRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

func clone(c domain.Cart) domain.Cart {
	out := make(domain.Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
