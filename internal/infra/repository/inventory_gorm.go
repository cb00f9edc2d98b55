package repository

import (
	"context"

	"marketplace/internal/domain/model"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 台帳への追記のみ。UPDATE/DELETEはリポジトリに置かない。
func (r *InventoryGormRepository) Create(ctx context.Context, tx *model.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *InventoryGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.InventoryTransaction, error) {
	var items []model.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return []model.InventoryTransaction{}, err
	}
	return items, nil
}

func (r *InventoryGormRepository) ListRecentByStoreID(ctx context.Context, storeID int64, limit int) ([]model.InventoryTransaction, error) {
	var items []model.InventoryTransaction
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = inventory_transactions.product_id").
		Where("products.store_id = ?", storeID).
		Order("inventory_transactions.created_at desc, inventory_transactions.id desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.InventoryTransaction{}, err
	}
	return items, nil
}
