package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 直近履歴の件数
const summaryRecentLimit = 10

// ストア在庫のサマリー
type InventorySummary struct {
	StoreID            int64                        `json:"store_id"`
	TotalProducts      int                          `json:"total_products"`
	InStockCount       int                          `json:"in_stock_count"`
	OutOfStockCount    int                          `json:"out_of_stock_count"`
	LowStockCount      int                          `json:"low_stock_count"`
	LowStockProducts   []model.Product              `json:"low_stock_products"`
	RecentTransactions []model.InventoryTransaction `json:"recent_transactions"`
}

type InventoryUsecase struct {
	tm     repo.TransactionManager
	ledger *stockLedger
	logger *zap.Logger
}

func NewInventoryUsecase(tm repo.TransactionManager, notifier Notifier, logger *zap.Logger) *InventoryUsecase {
	return &InventoryUsecase{
		tm:     tm,
		ledger: newStockLedger(notifier, logger),
		logger: logger,
	}
}

// 在庫を調整して台帳に追記する。
// 所有チェックは置かない：予約/解除は顧客の注文フローからも呼ばれる。
func (u *InventoryUsecase) AdjustStock(ctx context.Context, in StockAdjustmentInput, performedBy string) (model.InventoryTransaction, error) {
	if !model.IsValidTransactionType(string(in.Type)) {
		return model.InventoryTransaction{}, NewValidation("invalid transaction type: " + string(in.Type))
	}
	if in.QuantityChange == 0 {
		return model.InventoryTransaction{}, NewValidation("quantity change must not be zero")
	}

	var entry model.InventoryTransaction
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		e, _, err := u.ledger.apply(ctx, r, in, performedBy)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return model.InventoryTransaction{}, err
	}
	return entry, nil
}

// 注文確定前の在庫引当
func (u *InventoryUsecase) ReserveInventory(ctx context.Context, productID int64, quantity int, orderID int64, performedBy string) (model.InventoryTransaction, error) {
	return u.AdjustStock(ctx, StockAdjustmentInput{
		ProductID:      productID,
		QuantityChange: -quantity,
		Type:           model.TransactionReserved,
		Reason:         fmt.Sprintf("Reserved for order #%d", orderID),
		OrderID:        &orderID,
	}, performedBy)
}

// 引当の解除
func (u *InventoryUsecase) ReleaseInventory(ctx context.Context, productID int64, quantity int, orderID int64, performedBy string) (model.InventoryTransaction, error) {
	return u.AdjustStock(ctx, StockAdjustmentInput{
		ProductID:      productID,
		QuantityChange: quantity,
		Type:           model.TransactionUnreserved,
		Reason:         fmt.Sprintf("Released reservation for order #%d", orderID),
		OrderID:        &orderID,
	}, performedBy)
}

// ストア在庫のサマリーを集計する。無制限在庫は常に「在庫あり」に数える。
func (u *InventoryUsecase) GetInventorySummary(ctx context.Context, storeID int64, ownerEmail string) (InventorySummary, error) {
	var summary InventorySummary
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireStoreOwner(ctx, r, storeID, ownerEmail); err != nil {
			return err
		}

		products, err := r.Products().ListByStoreID(ctx, storeID)
		if err != nil {
			return NewInternal("db error")
		}

		summary = InventorySummary{
			StoreID:          storeID,
			TotalProducts:    len(products),
			LowStockProducts: []model.Product{},
		}
		for i := range products {
			p := &products[i]
			switch {
			case p.IsOutOfStock():
				summary.OutOfStockCount++
			default:
				summary.InStockCount++
			}
			if p.IsLowStock() {
				summary.LowStockCount++
				summary.LowStockProducts = append(summary.LowStockProducts, products[i])
			}
		}

		recent, err := r.Inventory().ListRecentByStoreID(ctx, storeID, summaryRecentLimit)
		if err != nil {
			return NewInternal("db error")
		}
		summary.RecentTransactions = recent
		return nil
	})
	if err != nil {
		return InventorySummary{}, err
	}
	return summary, nil
}

// ストアの在庫少アラート一覧
func (u *InventoryUsecase) GetLowStockAlerts(ctx context.Context, storeID int64, ownerEmail string, includeAcknowledged bool) ([]model.LowStockAlert, error) {
	var alerts []model.LowStockAlert
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireStoreOwner(ctx, r, storeID, ownerEmail); err != nil {
			return err
		}
		list, err := r.Alerts().ListByStoreID(ctx, storeID, includeAcknowledged)
		if err != nil {
			return NewInternal("db error")
		}
		alerts = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// アラートを確認済みにする。確認済みを再確認しても何も起きない。
func (u *InventoryUsecase) AcknowledgeAlert(ctx context.Context, alertID int64, acknowledgedBy string) (model.LowStockAlert, error) {
	var alert model.LowStockAlert
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Alerts().FindByID(ctx, alertID)
		if err == repo.ErrNotFound {
			return NewNotFound("alert not found")
		}
		if err != nil {
			return NewInternal("db error")
		}
		if a.Acknowledged {
			alert = a
			return nil
		}

		now := time.Now()
		a.Acknowledged = true
		a.AcknowledgedAt = &now
		a.AcknowledgedBy = acknowledgedBy
		if err := r.Alerts().Save(ctx, &a); err != nil {
			return NewInternal("db error")
		}
		alert = a
		return nil
	})
	if err != nil {
		return model.LowStockAlert{}, err
	}
	return alert, nil
}

// 商品の台帳履歴（新しい順）
func (u *InventoryUsecase) GetProductTransactionHistory(ctx context.Context, productID int64) ([]model.InventoryTransaction, error) {
	var history []model.InventoryTransaction
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			if err == repo.ErrNotFound {
				return NewNotFound("product not found")
			}
			return NewInternal("db error")
		}
		list, err := r.Inventory().ListByProductID(ctx, productID)
		if err != nil {
			return NewInternal("db error")
		}
		history = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// 日次の在庫ダイジェスト。低在庫・在庫切れがあるストアにだけまとめて送る。
// 1回の実行で全ストアを舐める。失敗したストアはログに残して続行する。
func (u *InventoryUsecase) SendDailyInventoryDigest(ctx context.Context) error {
	return u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		stores, err := r.Stores().ListAll(ctx)
		if err != nil {
			return NewInternal("db error")
		}

		for _, store := range stores {
			products, err := r.Products().ListByStoreID(ctx, store.ID)
			if err != nil {
				u.logger.Warn("inventory digest: product list failed",
					zap.Int64("store_id", store.ID), zap.Error(err))
				continue
			}

			var low, out []model.Product
			for i := range products {
				if products[i].IsOutOfStock() {
					out = append(out, products[i])
				} else if products[i].IsLowStock() {
					low = append(low, products[i])
				}
			}
			if len(low) == 0 && len(out) == 0 {
				continue
			}

			body := buildDigestBody(store, low, out)
			if err := u.ledger.notifier.Send(ctx, store.OwnerEmail, "Daily Inventory Digest: "+store.Name, body); err != nil {
				u.logger.Warn("inventory digest: send failed",
					zap.Int64("store_id", store.ID), zap.String("recipient", store.OwnerEmail), zap.Error(err))
			}
		}
		return nil
	})
}

func buildDigestBody(store model.Store, low, out []model.Product) string {
	body := fmt.Sprintf("Dear %s,\n\nInventory summary for %s:\n", store.OwnerName, store.Name)
	if len(out) > 0 {
		body += "\nOut of stock:\n"
		for i := range out {
			body += fmt.Sprintf("- %s\n", out[i].Name)
		}
	}
	if len(low) > 0 {
		body += "\nRunning low:\n"
		for i := range low {
			body += fmt.Sprintf("- %s (stock: %d, threshold: %d)\n", low[i].Name, low[i].StockQuantity, low[i].LowStockThreshold)
		}
	}
	body += "\nPlease consider restocking the items above."
	return body
}

// ストアの所有チェック。ストア不在はNotFound、別オーナーはUnauthorized。
func requireStoreOwner(ctx context.Context, r repo.TxRepos, storeID int64, ownerEmail string) error {
	store, err := r.Stores().FindByID(ctx, storeID)
	if err == repo.ErrNotFound {
		return NewNotFound("store not found")
	}
	if err != nil {
		return NewInternal("db error")
	}
	if store.OwnerEmail != ownerEmail {
		return NewUnauthorized("you do not own this store")
	}
	return nil
}
