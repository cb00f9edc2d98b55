package model

import "time"

// 注文の配送先住所（注文が所有する1:1）
type Address struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;uniqueIndex" json:"order_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Line1      string    `gorm:"type:varchar(255);not null" json:"line1"`
	Line2      string    `gorm:"type:varchar(255)" json:"line2"`
	City       string    `gorm:"type:varchar(255);not null" json:"city"`
	State      string    `gorm:"type:varchar(100)" json:"state"`
	PostalCode string    `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country    string    `gorm:"type:varchar(100)" json:"country"`
	Phone      string    `gorm:"type:varchar(30)" json:"phone"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
