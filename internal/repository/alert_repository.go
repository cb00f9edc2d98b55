package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type LowStockAlertRepository interface {
	Create(ctx context.Context, alert *model.LowStockAlert) error
	FindByID(ctx context.Context, id int64) (model.LowStockAlert, error)
	Save(ctx context.Context, alert *model.LowStockAlert) error

	//未確認アラートが既にあるか（商品ごとに1件ルールの判定）
	ExistsUnacknowledged(ctx context.Context, productID int64) (bool, error)

	ListByStoreID(ctx context.Context, storeID int64, includeAcknowledged bool) ([]model.LowStockAlert, error)
}
