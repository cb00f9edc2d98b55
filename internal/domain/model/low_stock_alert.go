package model

import "time"

// 在庫しきい値割れの通知。
// 未確認（acknowledged=false）のアラートは商品ごとに同時に1件まで。
type LowStockAlert struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//発生時点の在庫数としきい値
	CurrentStock   int `gorm:"not null" json:"current_stock"`
	ThresholdLevel int `gorm:"not null" json:"threshold_level"`

	Acknowledged   bool       `gorm:"not null;default:false;index" json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string     `gorm:"type:varchar(255)" json:"acknowledged_by"`

	//補充対応をしたか
	Actioned      bool       `gorm:"not null;default:false" json:"actioned"`
	ActionedAt    *time.Time `json:"actioned_at,omitempty"`
	ActionDetails string     `gorm:"type:varchar(500)" json:"action_details"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
