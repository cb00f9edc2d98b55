package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 在庫調整の入力
type StockAdjustmentInput struct {
	ProductID      int64
	QuantityChange int
	Type           model.TransactionType
	Reason         string
	OrderID        *int64
	Notes          string
}

// 在庫変更のコア。InventoryUsecaseと注文系のusecaseが
// 同一トランザクション内で共用する。
// 商品行をFOR UPDATEで取ってから更新・台帳追記・しきい値判定まで行うので、
// 同じ商品への同時調整は直列化される。
type stockLedger struct {
	notifier Notifier
	logger   *zap.Logger
}

func newStockLedger(notifier Notifier, logger *zap.Logger) *stockLedger {
	return &stockLedger{notifier: notifier, logger: logger}
}

// 在庫を変更して台帳に追記する。
// 無制限在庫(-1)は何もせず成功扱い（台帳にも残さない）。適用したかをappliedで返す。
func (l *stockLedger) apply(ctx context.Context, r repo.TxRepos, in StockAdjustmentInput, performedBy string) (model.InventoryTransaction, bool, error) {
	p, err := r.Products().FindByIDForUpdate(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return model.InventoryTransaction{}, false, NewNotFound("product not found")
	}
	if err != nil {
		return model.InventoryTransaction{}, false, NewInternal("db error")
	}

	//無制限在庫は減算・加算・台帳すべてスキップ
	if p.HasUnlimitedStock() {
		return model.InventoryTransaction{}, false, nil
	}

	newQuantity := p.StockQuantity + in.QuantityChange

	//ADJUSTMENTだけはマイナス在庫を許す（手動訂正の明示的な上書き）
	if newQuantity < 0 && in.Type != model.TransactionAdjustment {
		return model.InventoryTransaction{}, false,
			NewNegativeStock(fmt.Sprintf("cannot reduce stock below zero. current stock: %d", p.StockQuantity))
	}

	if err := r.Products().UpdateStockQuantity(ctx, p.ID, newQuantity); err != nil {
		return model.InventoryTransaction{}, false, NewInternal("db error")
	}

	entry := model.InventoryTransaction{
		ProductID:         p.ID,
		QuantityChange:    in.QuantityChange,
		RemainingQuantity: newQuantity,
		OrderID:           in.OrderID,
		Type:              in.Type,
		Reason:            in.Reason,
		PerformedBy:       performedBy,
		Notes:             in.Notes,
	}
	if err := r.Inventory().Create(ctx, &entry); err != nil {
		return model.InventoryTransaction{}, false, NewInternal("db error")
	}

	p.StockQuantity = newQuantity
	if err := l.checkLowStockThreshold(ctx, r, p); err != nil {
		return model.InventoryTransaction{}, false, err
	}

	return entry, true, nil
}

// しきい値割れならアラートを作って通知する。
// 未確認アラートが既にあれば何もしない（商品ごとに1件ルール）。
func (l *stockLedger) checkLowStockThreshold(ctx context.Context, r repo.TxRepos, p model.Product) error {
	if !p.IsLowStock() {
		return nil
	}

	exists, err := r.Alerts().ExistsUnacknowledged(ctx, p.ID)
	if err != nil {
		return NewInternal("db error")
	}
	if exists {
		return nil
	}

	alert := model.LowStockAlert{
		ProductID:      p.ID,
		CurrentStock:   p.StockQuantity,
		ThresholdLevel: p.LowStockThreshold,
	}
	if err := r.Alerts().Create(ctx, &alert); err != nil {
		return NewInternal("db error")
	}

	l.sendLowStockNotification(ctx, r, p, alert)
	return nil
}

// オーナーへの在庫少通知。失敗してもログだけ。
func (l *stockLedger) sendLowStockNotification(ctx context.Context, r repo.TxRepos, p model.Product, alert model.LowStockAlert) {
	store, err := r.Stores().FindByID(ctx, p.StoreID)
	if err != nil {
		l.logger.Warn("low stock notification skipped: store lookup failed",
			zap.Int64("product_id", p.ID), zap.Error(err))
		return
	}

	subject := "Low Stock Alert: " + p.Name
	body := fmt.Sprintf(
		"Dear %s,\n\nStock is running low for the following product:\n\nProduct: %s\nCurrent Stock: %d\nThreshold Level: %d\n\nPlease consider restocking this item.",
		store.OwnerName, p.Name, alert.CurrentStock, alert.ThresholdLevel,
	)

	if err := l.notifier.Send(ctx, store.OwnerEmail, subject, body); err != nil {
		l.logger.Warn("low stock notification failed",
			zap.Int64("product_id", p.ID), zap.String("recipient", store.OwnerEmail), zap.Error(err))
	}
}
