package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type AlertGormRepository struct {
	db *gorm.DB
}

func NewAlertGormRepository(db *gorm.DB) *AlertGormRepository {
	return &AlertGormRepository{db: db}
}

func (r *AlertGormRepository) Create(ctx context.Context, alert *model.LowStockAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *AlertGormRepository) FindByID(ctx context.Context, id int64) (model.LowStockAlert, error) {
	var a model.LowStockAlert
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.LowStockAlert{}, repo.ErrNotFound
	}
	if err != nil {
		return model.LowStockAlert{}, err
	}
	return a, nil
}

func (r *AlertGormRepository) Save(ctx context.Context, alert *model.LowStockAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

func (r *AlertGormRepository) ExistsUnacknowledged(ctx context.Context, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LowStockAlert{}).
		Where("product_id = ? AND acknowledged = false", productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AlertGormRepository) ListByStoreID(ctx context.Context, storeID int64, includeAcknowledged bool) ([]model.LowStockAlert, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = low_stock_alerts.product_id").
		Where("products.store_id = ?", storeID)

	if !includeAcknowledged {
		q = q.Where("low_stock_alerts.acknowledged = false")
	}

	var items []model.LowStockAlert
	err := q.Order("low_stock_alerts.created_at desc").Find(&items).Error
	if err != nil {
		return []model.LowStockAlert{}, err
	}
	return items, nil
}
