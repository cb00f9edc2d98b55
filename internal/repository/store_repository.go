package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/internal/domain/model"
)

type StoreRepository interface {
	FindByID(ctx context.Context, id int64) (model.Store, error)
	ListAll(ctx context.Context) ([]model.Store, error)

	IncrementOrderCount(ctx context.Context, storeID int64) error

	//売上をストア合計と日別レコードの両方に記録する
	RecordRevenue(ctx context.Context, storeID int64, amount decimal.Decimal, date time.Time) error
}
