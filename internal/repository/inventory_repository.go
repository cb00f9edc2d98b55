package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 在庫台帳はappend-only。更新・削除のメソッドは置かない。
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *model.InventoryTransaction) error

	//商品の履歴（新しい順）
	ListByProductID(ctx context.Context, productID int64) ([]model.InventoryTransaction, error)

	//ストア内の直近エントリ
	ListRecentByStoreID(ctx context.Context, storeID int64, limit int) ([]model.InventoryTransaction, error)
}
