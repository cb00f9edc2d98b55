package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// SELECT ... FOR UPDATE。
// 同じ商品への同時在庫調整を直列化する（remaining_quantityのスナップショットを競わせない）
func (r *ProductGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var items []model.Product
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id IN ?", ids).
		Find(&items).Error
	if err != nil {
		return []model.Product{}, err
	}
	return items, nil
}

func (r *ProductGormRepository) ListByStoreID(ctx context.Context, storeID int64) ([]model.Product, error) {
	var items []model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Product{}, err
	}
	return items, nil
}

func (r *ProductGormRepository) Save(ctx context.Context, p *model.Product) error {
	//Tagsはここでは触らない（ReplaceTagsを使う）
	return r.db.WithContext(ctx).Omit("Tags").Save(p).Error
}

func (r *ProductGormRepository) UpdateStockQuantity(ctx context.Context, productID int64, newQuantity int) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", newQuantity)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 物理削除。タグの紐付けとアラートも同一トランザクションで消す。
// 台帳エントリは履歴として残す。
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	p := model.Product{ID: id}
	if err := r.db.WithContext(ctx).Model(&p).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", id).
		Delete(&model.LowStockAlert{}).Error; err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Unscoped().Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) ReplaceTags(ctx context.Context, productID int64, tags []model.Tag) error {
	p := model.Product{ID: productID}
	return r.db.WithContext(ctx).Model(&p).Association("Tags").Replace(tags)
}
