package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// キャンセル・返品・交換のワークフロー
type ReturnUsecase struct {
	tm           repo.TransactionManager
	ledger       *stockLedger
	payments     *PaymentUsecase
	notifier     Notifier
	logger       *zap.Logger
	maxReminders int
}

func NewReturnUsecase(tm repo.TransactionManager, payments *PaymentUsecase, notifier Notifier, logger *zap.Logger, maxReminders int) *ReturnUsecase {
	return &ReturnUsecase{
		tm:           tm,
		ledger:       newStockLedger(notifier, logger),
		payments:     payments,
		notifier:     notifier,
		logger:       logger,
		maxReminders: maxReminders,
	}
}

// 注文をキャンセルする。PENDING/PROCESSINGのみ。
// 在庫の戻しとステータス変更は同一トランザクション。
// 返金の外部呼び出しはcommit後に行う（txを跨いで外部を待たない）。
func (u *ReturnUsecase) CancelOrder(ctx context.Context, orderID int64, actor string) (model.Order, error) {
	var cancelled model.Order
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFound("order not found")
		}
		if err != nil {
			return NewInternal("db error")
		}
		if !order.CanBeCancelled() {
			return NewInvalidStateTransition(
				fmt.Sprintf("order %s cannot be cancelled in status %s", order.OrderNumber, order.Status))
		}

		if err := u.restockItems(ctx, r, order, fmt.Sprintf("Restocked from cancelled order %s", order.OrderNumber), actor); err != nil {
			return err
		}

		order.Status = model.OrderStatusCancelled
		if err := r.Orders().Save(ctx, &order); err != nil {
			return NewInternal("db error")
		}

		u.notifyCancellation(ctx, r, order)
		cancelled = order
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	//前払い済みなら返金を試みる。返金失敗でキャンセル自体は巻き戻さない。
	if cancelled.IsPrepaid() {
		u.attemptRefund(ctx, cancelled)
	}
	return cancelled, nil
}

// 返品をリクエストする。DELIVEREDかつ期限内のみ。
func (u *ReturnUsecase) RequestReturn(ctx context.Context, orderID int64, actor string) (model.Order, error) {
	var requested model.Order
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFound("order not found")
		}
		if err != nil {
			return NewInternal("db error")
		}
		if order.Status != model.OrderStatusDelivered {
			return NewInvalidStateTransition(
				fmt.Sprintf("order %s cannot be returned in status %s", order.OrderNumber, order.Status))
		}
		if !order.WithinReturnWindow(time.Now()) {
			return NewReturnWindowExpired(
				fmt.Sprintf("return window has expired for order %s", order.OrderNumber))
		}

		order.Status = model.OrderStatusReturnRequested
		if err := r.Orders().Save(ctx, &order); err != nil {
			return NewInternal("db error")
		}

		//オーナーに対応依頼を飛ばす
		if store, err := r.Stores().FindByID(ctx, order.StoreID); err == nil {
			body := fmt.Sprintf(
				"Dear %s,\n\nA return has been requested for order %s.\nPlease review and process the return.",
				store.OwnerName, order.OrderNumber,
			)
			if err := u.notifier.Send(ctx, store.OwnerEmail, "Return Requested: "+order.OrderNumber, body); err != nil {
				u.logger.Warn("return request notification failed", zap.Int64("order_id", order.ID), zap.Error(err))
			}
		}

		requested = order
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return requested, nil
}

// 返品を処理する。refund=trueで返金（REFUNDED）、falseで交換（EXCHANGED）。
// どちらの場合も商品は戻ってくるので在庫を戻す。
func (u *ReturnUsecase) ProcessReturn(ctx context.Context, orderID int64, refund bool, actor string) (model.Order, error) {
	var processed model.Order
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFound("order not found")
		}
		if err != nil {
			return NewInternal("db error")
		}
		if order.Status != model.OrderStatusReturnRequested {
			return NewInvalidStateTransition(
				fmt.Sprintf("order %s has no pending return (status %s)", order.OrderNumber, order.Status))
		}

		if err := u.restockItems(ctx, r, order, fmt.Sprintf("Returned from order %s", order.OrderNumber), actor); err != nil {
			return err
		}

		if refund {
			order.Status = model.OrderStatusRefunded
		} else {
			order.Status = model.OrderStatusExchanged
		}
		if err := r.Orders().Save(ctx, &order); err != nil {
			return NewInternal("db error")
		}

		if customer, err := r.Users().FindByID(ctx, order.CustomerID); err == nil {
			outcome := "an exchange has been arranged"
			if refund {
				outcome = "a refund has been initiated"
			}
			body := fmt.Sprintf(
				"Dear %s,\n\nYour return for order %s has been processed and %s.",
				customer.Name, order.OrderNumber, outcome,
			)
			if err := u.notifier.Send(ctx, customer.Email, "Return Processed: "+order.OrderNumber, body); err != nil {
				u.logger.Warn("return processed notification failed", zap.Int64("order_id", order.ID), zap.Error(err))
			}
		}

		processed = order
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	if refund && processed.IsPrepaid() {
		u.attemptRefund(ctx, processed)
	}
	return processed, nil
}

// RETURN_REQUESTEDのまま放置されている注文のリマインダーをオーナーに送る。
// 1注文あたりの送信回数には上限がある。再実行しても上限で止まる。
func (u *ReturnUsecase) SendPendingReturnReminders(ctx context.Context) error {
	return u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByStatus(ctx, model.OrderStatusReturnRequested)
		if err != nil {
			return NewInternal("db error")
		}

		for i := range orders {
			order := &orders[i]
			if !order.CanReceiveMoreReminders(u.maxReminders) {
				continue
			}

			store, err := r.Stores().FindByID(ctx, order.StoreID)
			if err != nil {
				u.logger.Warn("return reminder skipped: store lookup failed",
					zap.Int64("order_id", order.ID), zap.Error(err))
				continue
			}

			body := fmt.Sprintf(
				"Dear %s,\n\nReminder %d of %d: order %s still has an unprocessed return request.",
				store.OwnerName, order.ReminderCount+1, u.maxReminders, order.OrderNumber,
			)
			if err := u.notifier.Send(ctx, store.OwnerEmail, "Pending Return Reminder: "+order.OrderNumber, body); err != nil {
				u.logger.Warn("return reminder failed", zap.Int64("order_id", order.ID), zap.Error(err))
				continue
			}

			order.IncrementReminderCount()
			if err := r.Orders().Save(ctx, order); err != nil {
				return NewInternal("db error")
			}
		}
		return nil
	})
}

// 明細ぶんの在庫を戻す（RETURN）。無制限在庫の行は台帳側でスキップされる。
// 明細はPreloadに頼らず同一tx内で取り直す。
func (u *ReturnUsecase) restockItems(ctx context.Context, r repo.TxRepos, order model.Order, reason, actor string) error {
	items, err := r.OrderItems().ListByOrderID(ctx, order.ID)
	if err != nil {
		return NewInternal("db error")
	}
	for _, item := range items {
		if _, _, err := u.ledger.apply(ctx, r, StockAdjustmentInput{
			ProductID:      item.ProductID,
			QuantityChange: item.Quantity,
			Type:           model.TransactionReturn,
			Reason:         reason,
			OrderID:        &order.ID,
		}, actor); err != nil {
			return err
		}
	}
	return nil
}

// 返金の試行。決済トランザクションの状態によっては拒否される（ログのみ）。
func (u *ReturnUsecase) attemptRefund(ctx context.Context, order model.Order) {
	if err := u.payments.RefundOrderPayment(ctx, order.ID); err != nil {
		u.logger.Warn("refund attempt failed",
			zap.Int64("order_id", order.ID), zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
}

func (u *ReturnUsecase) notifyCancellation(ctx context.Context, r repo.TxRepos, order model.Order) {
	if customer, err := r.Users().FindByID(ctx, order.CustomerID); err == nil {
		body := fmt.Sprintf(
			"Dear %s,\n\nYour order %s has been cancelled.",
			customer.Name, order.OrderNumber,
		)
		if err := u.notifier.Send(ctx, customer.Email, "Order Cancelled: "+order.OrderNumber, body); err != nil {
			u.logger.Warn("cancellation notification failed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}
	if store, err := r.Stores().FindByID(ctx, order.StoreID); err == nil {
		body := fmt.Sprintf(
			"Dear %s,\n\nOrder %s has been cancelled. Stock has been restored.",
			store.OwnerName, order.OrderNumber,
		)
		if err := u.notifier.Send(ctx, store.OwnerEmail, "Order Cancelled: "+order.OrderNumber, body); err != nil {
			u.logger.Warn("cancellation owner notification failed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}
}
