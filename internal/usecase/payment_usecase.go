package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// Webhookのイベント種別（プロセッサ側の命名に合わせる）
const (
	WebhookPaymentSucceeded = "payment_intent.succeeded"
	WebhookPaymentFailed    = "payment_intent.payment_failed"
)

// プロセッサが返金を確定させた時のステータス
const refundStatusSucceeded = "succeeded"

type PaymentUsecase struct {
	tm       repo.TransactionManager
	gateway  PaymentGateway
	notifier Notifier
	logger   *zap.Logger
	currency string
}

func NewPaymentUsecase(tm repo.TransactionManager, gateway PaymentGateway, notifier Notifier, logger *zap.Logger, currency string) *PaymentUsecase {
	return &PaymentUsecase{
		tm:       tm,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
		currency: currency,
	}
}

// 注文の決済インテントを作る。
// 外部呼び出し中にローカルのtxを開けっぱなしにしない：
// 読み→外部→書きの3段で、レコード作成は外部呼び出しの完了後。
func (u *PaymentUsecase) CreatePaymentIntent(ctx context.Context, orderID int64) (PaymentIntent, error) {
	var order model.Order
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFound("order not found")
		}
		if err != nil {
			return NewInternal("db error")
		}
		if _, err := r.Payments().FindByOrderID(ctx, o.ID); err == nil {
			return NewValidation("payment intent already exists for this order")
		} else if err != repo.ErrNotFound {
			return NewInternal("db error")
		}
		order = o
		return nil
	})
	if err != nil {
		return PaymentIntent{}, err
	}

	//最小通貨単位に変換（例：12.34 → 1234）
	amountMinor := order.TotalAmount.Shift(2).IntPart()
	intent, err := u.gateway.CreateIntent(ctx, amountMinor, u.currency, map[string]string{
		"order_id":     strconv.FormatInt(order.ID, 10),
		"order_number": order.OrderNumber,
	})
	if err != nil {
		return PaymentIntent{}, NewInternal("payment processor error: " + err.Error())
	}

	err = u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		tx := model.PaymentTransaction{
			TransactionID: intent.ID,
			OrderID:       order.ID,
			PaymentStatus: model.PaymentStatusPending,
			Amount:        order.TotalAmount,
		}
		if err := r.Payments().Create(ctx, &tx); err != nil {
			return NewInternal("db error")
		}
		return nil
	})
	if err != nil {
		return PaymentIntent{}, err
	}
	return intent, nil
}

// 決済トランザクションのステータスを突き合わせて更新する。
// 未知のIDは何もしない（他インスタンス発のWebhookが届くことがある）。
// 同じSUCCESSを二度適用しても副作用は一度きり。
func (u *PaymentUsecase) UpdateTransactionStatus(ctx context.Context, transactionID string, status model.PaymentStatus) error {
	return u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		tx, found, err := r.Payments().FindByTransactionID(ctx, transactionID)
		if err != nil {
			return NewInternal("db error")
		}
		if !found {
			u.logger.Info("unknown payment transaction, ignoring",
				zap.String("transaction_id", transactionID), zap.String("status", string(status)))
			return nil
		}
		if tx.PaymentStatus == status {
			return nil
		}

		if err := r.Payments().UpdateStatus(ctx, transactionID, status); err != nil {
			return NewInternal("db error")
		}

		//入金確定：注文を支払い済みにして売上を計上する
		if status == model.PaymentStatusSuccess {
			order, err := r.Orders().FindByID(ctx, tx.OrderID)
			if err != nil {
				return NewInternal("db error")
			}
			if order.PaymentStatus != model.OrderPaymentPaid {
				order.PaymentStatus = model.OrderPaymentPaid
				if err := r.Orders().Save(ctx, &order); err != nil {
					return NewInternal("db error")
				}
				if err := r.Stores().RecordRevenue(ctx, order.StoreID, order.TotalAmount, time.Now()); err != nil {
					return NewInternal("db error")
				}
			}
		}
		return nil
	})
}

// 失敗した決済の返金。FAILED以外は受け付けない。
func (u *PaymentUsecase) ProcessRefund(ctx context.Context, transactionID string) error {
	var payment model.PaymentTransaction
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		tx, found, err := r.Payments().FindByTransactionID(ctx, transactionID)
		if err != nil {
			return NewInternal("db error")
		}
		if !found {
			return NewNotFound("payment transaction not found")
		}
		if tx.PaymentStatus != model.PaymentStatusFailed {
			return NewInvalidRefundState(
				fmt.Sprintf("transaction %s cannot be refunded in status %s", transactionID, tx.PaymentStatus))
		}
		payment = tx
		return nil
	})
	if err != nil {
		return err
	}

	//プロセッサへの返金指示はtxの外で
	status, err := u.gateway.Refund(ctx, transactionID)
	if err != nil {
		return NewInternal("payment processor error: " + err.Error())
	}
	//プロセッサが確定させるまでローカルはFAILEDのまま（後続の再試行で再挑戦できる）
	if status != refundStatusSucceeded {
		u.logger.Warn("refund not confirmed by processor",
			zap.String("transaction_id", transactionID), zap.String("refund_status", status))
		return NewInternal("refund not confirmed by processor: " + status)
	}

	return u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Payments().UpdateStatus(ctx, transactionID, model.PaymentStatusRefunded); err != nil {
			return NewInternal("db error")
		}

		order, err := r.Orders().FindByID(ctx, payment.OrderID)
		if err != nil {
			u.logger.Warn("refund notification skipped: order lookup failed",
				zap.String("transaction_id", transactionID), zap.Error(err))
			return nil
		}
		if customer, err := r.Users().FindByID(ctx, order.CustomerID); err == nil {
			body := fmt.Sprintf(
				"Dear %s,\n\nA refund of %s has been issued for order %s.",
				customer.Name, payment.Amount.StringFixed(2), order.OrderNumber,
			)
			if err := u.notifier.Send(ctx, customer.Email, "Refund Issued: "+order.OrderNumber, body); err != nil {
				u.logger.Warn("refund notification failed", zap.Int64("order_id", order.ID), zap.Error(err))
			}
		}
		return nil
	})
}

// 注文IDからの返金。キャンセル・返品ワークフローが呼ぶ。
func (u *PaymentUsecase) RefundOrderPayment(ctx context.Context, orderID int64) error {
	var transactionID string
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		tx, err := r.Payments().FindByOrderID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFound("payment transaction not found for order")
		}
		if err != nil {
			return NewInternal("db error")
		}
		transactionID = tx.TransactionID
		return nil
	})
	if err != nil {
		return err
	}
	return u.ProcessRefund(ctx, transactionID)
}

// Webhookの処理。配送はプロセッサ側でリトライされるので、
// ここでのエラーは飲み込んでログに残すだけ（署名検証はhandler側で済んでいる前提）。
func (u *PaymentUsecase) HandleWebhookEvent(ctx context.Context, eventType string, transactionID string) {
	switch eventType {
	case WebhookPaymentSucceeded:
		if err := u.UpdateTransactionStatus(ctx, transactionID, model.PaymentStatusSuccess); err != nil {
			u.logger.Error("webhook: mark success failed",
				zap.String("transaction_id", transactionID), zap.Error(err))
		}
	case WebhookPaymentFailed:
		//返金→FAILEDの順。初回はFAILED前で返金ガードに弾かれるが、
		//プロセッサの再配送で収束する。
		if err := u.ProcessRefund(ctx, transactionID); err != nil {
			u.logger.Warn("webhook: refund attempt failed",
				zap.String("transaction_id", transactionID), zap.Error(err))
		}
		if err := u.UpdateTransactionStatus(ctx, transactionID, model.PaymentStatusFailed); err != nil {
			u.logger.Error("webhook: mark failed failed",
				zap.String("transaction_id", transactionID), zap.Error(err))
		}
	default:
		u.logger.Info("webhook: unhandled event type", zap.String("event_type", eventType))
	}
}
