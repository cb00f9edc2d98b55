package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// カート管理の本体は外部。本コアは「読む」「消費する」だけ。
type CartRepository interface {
	ListByCustomerID(ctx context.Context, customerID int64) ([]model.CartItem, error)

	//注文確定で消費した明細を消す
	Clear(ctx context.Context, items []model.CartItem) error
}
