package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// ストア向け注文一覧の絞り込み条件
type StoreOrderListFilter struct {
	StoreID int64
	Status  string
	Page    int
	Limit   int
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error)

	//明細・住所ごと保存する（IDはoに書き戻す）
	Create(ctx context.Context, o *model.Order) error
	Save(ctx context.Context, o *model.Order) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	ListByStore(ctx context.Context, f StoreOrderListFilter) ([]model.Order, int64, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	CountByStore(ctx context.Context, storeID int64) (int64, error)
	CountByStoreAndStatus(ctx context.Context, storeID int64, status model.OrderStatus) (int64, error)
}
