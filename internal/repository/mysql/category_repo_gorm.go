package mysql

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repository"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return translate(r.db.WithContext(ctx).Omit("Products").Create(c).Error, "category")
}

func (r *categoryRepo) Update(ctx context.Context, c *domain.Category) error {
	err := r.db.WithContext(ctx).Model(c).Select("name", "slug").Updates(c).Error
	return translate(err, "category")
}

// Delete walks the ownership graph explicitly: products first, then the
// category, in one transaction.
func (r *categoryRepo) Delete(ctx context.Context, id uint64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("category_id = ?", id).Delete(&domain.Product{})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Delete(&domain.Category{}, id).Error; err != nil {
			return err
		}
		log.WithFields(log.Fields{"category_id": id, "products": res.RowsAffected}).Info("category deleted")
		return nil
	})
	return translate(err, "category")
}

func (r *categoryRepo) FindByID(ctx context.Context, id uint64) (*domain.Category, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *categoryRepo) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.findOne(r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *categoryRepo) findOne(q *gorm.DB) (*domain.Category, error) {
	var c domain.Category
	if err := q.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("category lookup error: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		log.Printf("List error: %v", err)
		return nil, err
	}
	return out, nil
}
