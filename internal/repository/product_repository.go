package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//行ロック付きで取得（在庫更新の直列化用。トランザクション内でのみ使う）
	FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error)

	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	ListByStoreID(ctx context.Context, storeID int64) ([]model.Product, error)

	Save(ctx context.Context, p *model.Product) error

	//在庫数の書き込みは台帳のadjust経由のみ
	UpdateStockQuantity(ctx context.Context, productID int64, newQuantity int) error

	//商品と従属行を物理削除する
	Delete(ctx context.Context, id int64) error

	//タグの付け替え（many2manyの入れ替え）
	ReplaceTags(ctx context.Context, productID int64, tags []model.Tag) error
}
