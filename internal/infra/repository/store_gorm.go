package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type StoreGormRepository struct {
	db *gorm.DB
}

func NewStoreGormRepository(db *gorm.DB) *StoreGormRepository {
	return &StoreGormRepository{db: db}
}

func (r *StoreGormRepository) FindByID(ctx context.Context, id int64) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}

func (r *StoreGormRepository) ListAll(ctx context.Context) ([]model.Store, error) {
	var items []model.Store
	err := r.db.WithContext(ctx).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.Store{}, err
	}
	return items, nil
}

func (r *StoreGormRepository) IncrementOrderCount(ctx context.Context, storeID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ?", storeID).
		Update("order_count", gorm.Expr("order_count + 1"))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *StoreGormRepository) RecordRevenue(ctx context.Context, storeID int64, amount decimal.Decimal, date time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ?", storeID).
		Update("total_revenue", gorm.Expr("total_revenue + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	rev := model.StoreRevenue{
		StoreID: storeID,
		Amount:  amount,
		Date:    date,
	}
	return r.db.WithContext(ctx).Create(&rev).Error
}
