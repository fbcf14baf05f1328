package mysql

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repository"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// CreateWithItems writes the order row first, then each item, inside a single
// transaction. Any failure rolls every row back.
func (r *orderRepo) CreateWithItems(ctx context.Context, order *domain.Order) error {
	items := order.Items
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if order.ID == 0 {
			return errors.New("failed to assign order ID")
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Omit(clause.Associations).Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("user_id", order.UserID).Error("order transaction rolled back")
		order.ID = 0
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = 0
		}
		return translate(err, "order")
	}

	log.WithFields(log.Fields{"order_id": order.ID, "items": len(items)}).Info("order saved")
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.Order{})
		if f.UserID != 0 {
			q = q.Where("user_id = ?", f.UserID)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		return q
	}

	var count int64
	if err := scoped().Count(&count).Error; err != nil {
		log.Printf("List count error: %v", err)
		return nil, 0, err
	}

	offset, limit := pageBounds(f.Page, f.Limit)
	var out []domain.Order
	err := scoped().Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		log.Printf("List error: %v", err)
		return nil, 0, err
	}
	return out, count, nil
}

func (r *orderRepo) UpdateShipping(ctx context.Context, id uint64, s domain.ShippingInfo) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Updates(map[string]any{
		"name":    s.Name,
		"address": s.Address,
		"phone":   s.Phone,
	}).Error
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		log.Printf("UpdateStatus error: %v", res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) UpdateStatusAndShipping(ctx context.Context, id uint64, from, to domain.OrderStatus, s domain.ShippingInfo) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":  to,
			"name":    s.Name,
			"address": s.Address,
			"phone":   s.Phone,
		})
	if res.Error != nil {
		log.Printf("UpdateStatusAndShipping error: %v", res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete relies on the order_items foreign key cascade.
func (r *orderRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Order{}, id).Error
}
