package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文の明細。価格は注文時点のスナップショット。
// total = price * quantity を書き込みのたびに再計算する（入力は信用しない）。
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 明細合計を再計算する
func (i *OrderItem) RecalculateTotal() {
	i.Total = i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
