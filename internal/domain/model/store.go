package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ストア（出店者の店舗）。所有者チェックはOwnerEmailで行う。
type Store struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID      int64           `gorm:"not null;index" json:"owner_id"`
	OwnerEmail   string          `gorm:"type:varchar(255);not null;index" json:"owner_email"`
	OwnerName    string          `gorm:"type:varchar(255)" json:"owner_name"`
	OrderCount   int64           `gorm:"not null;default:0" json:"order_count"`
	TotalRevenue decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_revenue"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 日別の売上記録
type StoreRevenue struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID   int64           `gorm:"not null;index" json:"store_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Date      time.Time       `gorm:"type:date;not null;index" json:"date"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
