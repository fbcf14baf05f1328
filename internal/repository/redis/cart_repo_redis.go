package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Cmdable is the subset of the redis client the cart store needs.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type cartRepo struct {
	rdb Cmdable
	ttl time.Duration
}

// NewCartRepository stores carts as JSON objects under cart:<session>. Every
// save refreshes the TTL so an idle cart expires with its session.
func NewCartRepository(rdb Cmdable, ttl time.Duration) repository.CartRepository {
	return &cartRepo{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string { return "cart:" + sessionID }

func (r *cartRepo) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	b, err := r.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Cart{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart := domain.Cart{}
	if err := json.Unmarshal(b, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}

func (r *cartRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	if len(cart) == 0 {
		return r.Delete(ctx, sessionID)
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.rdb.Set(ctx, cartKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *cartRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
