package mysql

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, "product")
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	err := r.db.WithContext(ctx).Model(p).Select(
		"name", "description", "price", "stock", "image_url", "category_id", "updated_at",
	).Updates(p).Error
	return translate(err, "product")
}

func (r *productRepo) Delete(ctx context.Context, id uint64) error {
	return translate(r.db.WithContext(ctx).Delete(&domain.Product{}, id).Error, "product")
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID error: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		log.Printf("FindByIDs error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *productRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.Product{})
		if f.CategoryID != 0 {
			q = q.Where("products.category_id = ?", f.CategoryID)
		}
		if f.CategorySlug != "" {
			q = q.Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.slug = ?", f.CategorySlug)
		}
		if f.Price != nil {
			q = q.Where("products.price = ?", *f.Price)
		}
		if f.MinPrice != nil {
			q = q.Where("products.price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("products.price <= ?", *f.MaxPrice)
		}
		if f.Stock != nil {
			q = q.Where("products.stock = ?", *f.Stock)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			like := "%" + s + "%"
			q = q.Where("products.name LIKE ? OR products.description LIKE ?", like, like)
		}
		return q
	}

	var count int64
	if err := filtered().Count(&count).Error; err != nil {
		log.Printf("List count error: %v", err)
		return nil, 0, err
	}

	q := filtered()
	if col, ok := domain.ProductOrderings[f.Ordering]; ok {
		q = q.Order("products." + col)
	}
	offset, limit := pageBounds(f.Page, f.Limit)

	var out []domain.Product
	if err := q.Order("products.id ASC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		log.Printf("List error: %v", err)
		return nil, 0, err
	}
	return out, count, nil
}
