package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusProcessing      OrderStatus = "PROCESSING"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusReturnRequested OrderStatus = "RETURN_REQUESTED"
	OrderStatusRefunded        OrderStatus = "REFUNDED"
	OrderStatusExchanged       OrderStatus = "EXCHANGED"
)

// 注文の支払いステータス（決済トランザクションのステータスとは別物）
type OrderPaymentStatus string

const (
	OrderPaymentPending OrderPaymentStatus = "PENDING"
	OrderPaymentPaid    OrderPaymentStatus = "PAID"
)

// 返品受付の期限（配達から30日）
const ReturnWindow = 30 * 24 * time.Hour

// 1回のチェックアウト＝1注文。
// 金額内訳は total = subtotal + shipping + tax - discount を作成時に満たす。
type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_number"`
	CustomerID  int64  `gorm:"not null;index" json:"customer_id"`
	StoreID     int64  `gorm:"not null;index" json:"store_id"`

	//明細は注文が所有する（注文削除で明細も消す）
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	//配送先（注文が所有する1:1）
	ShippingAddress *Address `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"shipping_address,omitempty"`

	PaymentMethod string             `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentStatus OrderPaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`

	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_cost"`
	Tax          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Discount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//配送トラッキング
	TrackingNumber    string     `gorm:"type:varchar(50)" json:"tracking_number"`
	CarrierName       string     `gorm:"type:varchar(100)" json:"carrier_name"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`

	//返品フォローアップの送信回数
	ReminderCount int `gorm:"not null;default:0" json:"reminder_count"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// キャンセル可能か（PENDING / PROCESSING のみ）
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// 返品リクエスト可能か（DELIVERED かつ期限内のみ）。
// 配達日時が未記録なら作成日時を起点にする。
func (o *Order) CanBeReturned(now time.Time) bool {
	if o.Status != OrderStatusDelivered {
		return false
	}
	return o.WithinReturnWindow(now)
}

func (o *Order) WithinReturnWindow(now time.Time) bool {
	base := o.CreatedAt
	if o.DeliveredAt != nil {
		base = *o.DeliveredAt
	}
	return !now.After(base.Add(ReturnWindow))
}

// 終端ステータスか（DELIVERED は返品があるので終端ではない）
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusCancelled, OrderStatusRefunded, OrderStatusExchanged:
		return true
	}
	return false
}

// 前払い済みか（キャンセル時に返金するかどうかの判定）
func (o *Order) IsPrepaid() bool {
	return o.PaymentStatus == OrderPaymentPaid
}

// リマインダー送信の上限チェック
func (o *Order) CanReceiveMoreReminders(max int) bool {
	return o.ReminderCount < max
}

func (o *Order) IncrementReminderCount() {
	o.ReminderCount++
}

// 指定ステータスが正当な値か
func IsValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturnRequested,
		OrderStatusRefunded, OrderStatusExchanged:
		return true
	}
	return false
}
