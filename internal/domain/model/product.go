package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "Active"
	ProductStatusInactive ProductStatus = "Inactive"
	ProductStatusDraft    ProductStatus = "Draft"
)

// 在庫数 -1 は「無制限在庫」の番兵値。
// 無制限在庫は減算・加算・しきい値判定を全てスキップする。
const UnlimitedStock = -1

// 在庫しきい値のデフォルト
const DefaultLowStockThreshold = 5

// 在庫数は在庫台帳のadjust経由でのみ更新する。直接代入は禁止。
type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID     int64  `gorm:"not null;index" json:"store_id"`
	CategoryID  *int64 `gorm:"index" json:"category_id,omitempty"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Price decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	//値下げ時に割引表示用として元値を残す
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"original_price,omitempty"`

	StockQuantity     int `gorm:"not null;default:0" json:"stock_quantity"`
	LowStockThreshold int `gorm:"not null;default:5" json:"low_stock_threshold"`

	Status      ProductStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Featured    bool          `gorm:"not null;default:false" json:"featured"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`

	Tags []Tag `gorm:"many2many:product_tags" json:"tags,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) HasUnlimitedStock() bool {
	return p.StockQuantity == UnlimitedStock
}

// 要求数量を満たせるか（無制限なら常にtrue）
func (p *Product) HasStockFor(quantity int) bool {
	return p.HasUnlimitedStock() || p.StockQuantity >= quantity
}

// 在庫しきい値を下回っているか（0以下は「在庫切れ」で別扱い）
func (p *Product) IsLowStock() bool {
	if p.HasUnlimitedStock() {
		return false
	}
	return p.StockQuantity > 0 && p.StockQuantity <= p.LowStockThreshold
}

func (p *Product) IsOutOfStock() bool {
	return !p.HasUnlimitedStock() && p.StockQuantity <= 0
}
