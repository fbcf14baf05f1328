package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedCatalog serves single-product lookups through redis and collapses
// concurrent misses for the same id. Batch lookups always hit the database so
// cart pricing reflects current prices.
type CachedCatalog struct {
	products repository.ProductRepository
	rdb      CacheClient
	ttl      time.Duration
	group    singleflight.Group
}

// NewCachedCatalog works without redis when rdb is nil.
func NewCachedCatalog(products repository.ProductRepository, rdb CacheClient, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		products: products,
		rdb:      rdb,
		ttl:      ttl,
	}
}

func productCacheKey(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *CachedCatalog) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	key := productCacheKey(id)

	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
			var p domain.Product
			if err := json.Unmarshal(cached, &p); err == nil {
				return &p, nil
			}
		}
	}

	v, err, _ := c.group.Do(strconv.FormatUint(id, 10), func() (interface{}, error) {
		p, err := c.products.FindByID(ctx, id)
		if err != nil || p == nil {
			return p, err
		}
		c.store(ctx, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p, _ := v.(*domain.Product)
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (c *CachedCatalog) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	return c.products.FindByIDs(ctx, ids)
}

func (c *CachedCatalog) Invalidate(ctx context.Context, id uint64) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, productCacheKey(id)).Err(); err != nil {
		log.Printf("Failed to invalidate product %d: %v", id, err)
	}
}

func (c *CachedCatalog) store(ctx context.Context, p *domain.Product) {
	if c.rdb == nil {
		return
	}
	if data, err := json.Marshal(p); err == nil {
		c.rdb.Set(ctx, productCacheKey(p.ID), data, c.ttl)
	}
}

func (c *CachedCatalog) Warmup(ctx context.Context, productIDs []uint64) error {
	if c.rdb == nil {
		return nil
	}

	products, err := c.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return err
	}
	for i := range products {
		c.store(ctx, &products[i])
	}
	log.Printf("Warmed product cache with %d products", len(products))
	return nil
}
