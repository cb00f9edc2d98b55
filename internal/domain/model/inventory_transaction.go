package model

import "time"

// 在庫トランザクションの種別
type TransactionType string

const (
	TransactionPurchase   TransactionType = "PURCHASE"   // 仕入れ
	TransactionSale       TransactionType = "SALE"       // 販売
	TransactionAdjustment TransactionType = "ADJUSTMENT" // 手動調整
	TransactionReturn     TransactionType = "RETURN"     // 顧客返品
	TransactionDamaged    TransactionType = "DAMAGED"    // 破損
	TransactionTransfer   TransactionType = "TRANSFER"   // 拠点間移動
	TransactionInitial    TransactionType = "INITIAL"    // 初期在庫
	TransactionExpired    TransactionType = "EXPIRED"    // 期限切れ
	TransactionReserved   TransactionType = "RESERVED"   // 注文確定前の引当
	TransactionUnreserved TransactionType = "UNRESERVED" // 引当解除
)

func IsValidTransactionType(t string) bool {
	switch TransactionType(t) {
	case TransactionPurchase, TransactionSale, TransactionAdjustment,
		TransactionReturn, TransactionDamaged, TransactionTransfer,
		TransactionInitial, TransactionExpired, TransactionReserved,
		TransactionUnreserved:
		return true
	}
	return false
}

// 在庫台帳のエントリ。作成後は不変（訂正は逆向きのエントリを追記する）。
// RemainingQuantityは変更適用後の在庫数のスナップショットで、後から再計算しない。
type InventoryTransaction struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//正＝入庫、負＝出庫
	QuantityChange    int `gorm:"not null" json:"quantity_change"`
	RemainingQuantity int `gorm:"not null" json:"remaining_quantity"`

	//関連する注文（あれば）
	OrderID *int64 `gorm:"index" json:"order_id,omitempty"`

	Type        TransactionType `gorm:"type:varchar(20);not null;index" json:"type"`
	Reason      string          `gorm:"type:varchar(255)" json:"reason"`
	PerformedBy string          `gorm:"type:varchar(255)" json:"performed_by"`
	Notes       string          `gorm:"type:varchar(500)" json:"notes"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
