package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/infra/s3"
	"storefront/internal/policy"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	reader     infra.ProductReader
	cache      infra.ProductCache
	images     s3.ImageStore
}

// NewCatalogService reads single products through reader and drops cached
// copies through cache on every write. images may be nil when uploads are
// not configured.
func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	reader infra.ProductReader,
	cache infra.ProductCache,
	images s3.ImageStore,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		reader:     reader,
		cache:      cache,
		images:     images,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.Ordering != "" {
		if _, ok := domain.ProductOrderings[f.Ordering]; !ok {
			return nil, 0, domain.Invalid("ordering", fmt.Sprintf("%q is not a valid ordering", f.Ordering))
		}
	}
	return s.products.List(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.reader.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor domain.Actor, p *domain.Product) error {
	if err := policy.WriteCatalog(actor).Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.requireCategory(ctx, p.CategoryID); err != nil {
		return err
	}
	p.ID = 0
	if err := s.products.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	log.WithFields(log.Fields{"product_id": p.ID, "by": actor.Username}).Info("Product created")
	return nil
}

// ProductPatch carries the fields of a partial product update; nil fields are
// left unchanged.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *uint64
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor domain.Actor, id uint64, patch ProductPatch) (*domain.Product, error) {
	if err := policy.WriteCatalog(actor).Err(); err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := s.requireCategory(ctx, p.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	s.cache.Invalidate(ctx, id)
	return p, nil
}

// DeleteProduct fails with a conflict when the product appears on an order.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor domain.Actor, id uint64) error {
	if err := policy.WriteCatalog(actor).Err(); err != nil {
		return err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

// SetProductImage uploads the image and records its URL on the product.
func (s *CatalogService) SetProductImage(ctx context.Context, actor domain.Actor, id uint64, filename, contentType string, body io.Reader) (*domain.Product, error) {
	if err := policy.WriteCatalog(actor).Err(); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, fmt.Errorf("image uploads are not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, domain.Invalid("image", "upload a valid image")
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}

	key := fmt.Sprintf("products/%d/%s-%s", id, time.Now().UTC().Format("20060102150405"), path.Base(filename))
	url, err := s.images.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, err
	}

	p.ImageURL = url
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	s.cache.Invalidate(ctx, id)
	return p, nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id uint64) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.Invalid("category", fmt.Sprintf("invalid category %d", id))
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint64) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// GetCategoryBySlug returns nil, nil when no category has the slug.
func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.categories.FindBySlug(ctx, slug)
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Actor, c *domain.Category) error {
	if err := policy.WriteCatalog(actor).Err(); err != nil {
		return err
	}
	if c.Slug == "" {
		c.Slug = domain.Slugify(c.Name)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = 0
	if err := s.categories.Create(ctx, c); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

type CategoryPatch struct {
	Name *string
	Slug *string
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actor domain.Actor, id uint64, patch CategoryPatch) (*domain.Category, error) {
	if err := policy.WriteCatalog(actor).Err(); err != nil {
		return nil, err
	}
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Slug != nil {
		c.Slug = *patch.Slug
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return c, nil
}

// DeleteCategory removes the category and every product in it.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor domain.Actor, id uint64) error {
	if err := policy.WriteCatalog(actor).Err(); err != nil {
		return err
	}
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	ids, err := s.productIDsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	for _, pid := range ids {
		s.cache.Invalidate(ctx, pid)
	}
	log.WithFields(log.Fields{"category_id": id, "by": actor.Username}).Info("Category deleted")
	return nil
}

func (s *CatalogService) productIDsInCategory(ctx context.Context, categoryID uint64) ([]uint64, error) {
	var ids []uint64
	for page := 1; ; page++ {
		batch, total, err := s.products.List(ctx, domain.ProductFilter{CategoryID: categoryID, Page: page, Limit: 100})
		if err != nil {
			return nil, err
		}
		for _, p := range batch {
			ids = append(ids, p.ID)
		}
		if len(batch) == 0 || int64(len(ids)) >= total {
			return ids, nil
		}
	}
}
