package model

import "github.com/shopspring/decimal"

// 一括操作の種別
type BulkOperationType string

const (
	BulkOpUpdate         BulkOperationType = "UPDATE"
	BulkOpDelete         BulkOperationType = "DELETE"
	BulkOpPublish        BulkOperationType = "PUBLISH"
	BulkOpUnpublish      BulkOperationType = "UNPUBLISH"
	BulkOpAdjustPrice    BulkOperationType = "ADJUST_PRICE"
	BulkOpAdjustStock    BulkOperationType = "ADJUST_STOCK"
	BulkOpChangeCategory BulkOperationType = "CHANGE_CATEGORY"
	BulkOpUpdateTags     BulkOperationType = "UPDATE_TAGS"
)

// 価格調整の方式
type PriceAdjustmentType string

const (
	PriceAdjustFixed           PriceAdjustmentType = "FIXED"
	PriceAdjustIncreaseAmount  PriceAdjustmentType = "INCREASE_AMOUNT"
	PriceAdjustDecreaseAmount  PriceAdjustmentType = "DECREASE_AMOUNT"
	PriceAdjustIncreasePercent PriceAdjustmentType = "INCREASE_PERCENT"
	PriceAdjustDecreasePercent PriceAdjustmentType = "DECREASE_PERCENT"
)

// 一括操作のリクエスト。操作種別ごとに使うフィールドが異なる。
type BulkOperationRequest struct {
	OperationType BulkOperationType `json:"operation_type"`
	ProductIDs    []int64           `json:"product_ids"`

	//UPDATE用
	Status   *ProductStatus `json:"status,omitempty"`
	Featured *bool          `json:"featured,omitempty"`

	//ADJUST_PRICE用
	PriceAdjustmentType PriceAdjustmentType `json:"price_adjustment_type,omitempty"`
	Price               *decimal.Decimal    `json:"price,omitempty"`
	Percentage          *decimal.Decimal    `json:"percentage,omitempty"`

	//ADJUST_STOCK用
	StockQuantity *int `json:"stock_quantity,omitempty"`

	//CHANGE_CATEGORY用
	CategoryID *int64 `json:"category_id,omitempty"`

	//UPDATE_TAGS用
	AddTagIDs    []int64 `json:"add_tag_ids,omitempty"`
	RemoveTagIDs []int64 `json:"remove_tag_ids,omitempty"`
}

// 一括操作の結果。永続化しない。
type BulkOperationResult struct {
	TotalRequested int     `json:"total_requested"`
	Processed      int     `json:"processed"`
	SuccessIDs     []int64 `json:"success_ids"`
	FailedIDs      []int64 `json:"failed_ids"`
}

func (r *BulkOperationResult) IsFullySuccessful() bool {
	return r.Processed > 0 && len(r.FailedIDs) == 0
}

func (r *BulkOperationResult) IsCompletelyFailed() bool {
	return r.Processed > 0 && len(r.SuccessIDs) == 0
}

func (r *BulkOperationResult) IsPartiallyFailed() bool {
	return len(r.SuccessIDs) > 0 && len(r.FailedIDs) > 0
}
