package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 税率10%（小計に対して）
var taxRate = decimal.NewFromFloat(0.10)

// SHIPPEDにした時の配達予定（3日後）
const estimatedDeliveryLead = 3 * 24 * time.Hour

// 注文作成の入力。カート明細はサーバ側で読む（入力では受けない）。
type CreateOrderInput struct {
	CustomerID      int64
	PaymentMethod   string
	ShippingAddress *model.Address
}

// ステータス更新の入力
type UpdateOrderStatusInput struct {
	OrderID   int64
	NewStatus string
	Actor     string
}

// ストアの注文統計
type OrderStats struct {
	StoreID      int64                       `json:"store_id"`
	TotalOrders  int64                       `json:"total_orders"`
	StatusCounts map[model.OrderStatus]int64 `json:"status_counts"`
}

type OrderUsecase struct {
	tm           repo.TransactionManager
	ledger       *stockLedger
	returns      *ReturnUsecase
	notifier     Notifier
	logger       *zap.Logger
	shippingCost decimal.Decimal
}

func NewOrderUsecase(tm repo.TransactionManager, returns *ReturnUsecase, notifier Notifier, logger *zap.Logger, shippingCost decimal.Decimal) *OrderUsecase {
	return &OrderUsecase{
		tm:           tm,
		ledger:       newStockLedger(notifier, logger),
		returns:      returns,
		notifier:     notifier,
		logger:       logger,
		shippingCost: shippingCost,
	}
}

// カートから注文を作る。全工程が1トランザクション：
// 途中で失敗したら在庫減算も注文も残らない。
func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (model.Order, error) {
	var (
		created    model.Order
		customer   model.User
		store      model.Store
		customerOK bool
		storeOK    bool
	)
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		cartItems, err := r.Carts().ListByCustomerID(ctx, in.CustomerID)
		if err != nil {
			return NewInternal("db error")
		}
		if len(cartItems) == 0 {
			return NewEmptyCart("cart is empty")
		}

		//ストアは先頭明細の商品から決める。複数ストアにまたがるカートは受け付けない。
		productIDs := make([]int64, 0, len(cartItems))
		for _, ci := range cartItems {
			productIDs = append(productIDs, ci.ProductID)
		}
		products, err := r.Products().FindByIDs(ctx, productIDs)
		if err != nil {
			return NewInternal("db error")
		}
		productByID := make(map[int64]model.Product, len(products))
		for _, p := range products {
			productByID[p.ID] = p
		}
		first, ok := productByID[cartItems[0].ProductID]
		if !ok {
			return NewNotFound("product not found")
		}
		storeID := first.StoreID
		for _, p := range products {
			if p.StoreID != storeID {
				return NewValidation("cart contains products from multiple stores")
			}
		}

		order := model.Order{
			OrderNumber:     generateOrderNumber(),
			CustomerID:      in.CustomerID,
			StoreID:         storeID,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   model.OrderPaymentPending,
			Status:          model.OrderStatusPending,
			Subtotal:        decimal.Zero,
			ShippingCost:    u.shippingCost,
			Tax:             decimal.Zero,
			Discount:        decimal.Zero,
			TotalAmount:     decimal.Zero,
			ShippingAddress: in.ShippingAddress,
		}
		//明細より先に作ってIDを確定させる（台帳のOrderIDに使う）
		if err := r.Orders().Create(ctx, &order); err != nil {
			return NewInternal("db error")
		}

		subtotal := decimal.Zero
		items := make([]model.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			//行ロックを取ってから在庫判定する
			p, err := r.Products().FindByIDForUpdate(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewNotFound(fmt.Sprintf("product %d not found", ci.ProductID))
			}
			if err != nil {
				return NewInternal("db error")
			}
			if !p.HasStockFor(ci.Quantity) {
				return NewInsufficientStock(
					fmt.Sprintf("insufficient stock for product: %s (available: %d, requested: %d)", p.Name, p.StockQuantity, ci.Quantity))
			}

			item := model.OrderItem{
				OrderID:   order.ID,
				ProductID: p.ID,
				Quantity:  ci.Quantity,
				Price:     p.Price,
			}
			item.RecalculateTotal()
			items = append(items, item)
			subtotal = subtotal.Add(item.Total)

			//在庫の減算は台帳経由のみ。無制限在庫は中でスキップされる。
			if _, _, err := u.ledger.apply(ctx, r, StockAdjustmentInput{
				ProductID:      p.ID,
				QuantityChange: -ci.Quantity,
				Type:           model.TransactionSale,
				Reason:         fmt.Sprintf("Sold in order %s", order.OrderNumber),
				OrderID:        &order.ID,
			}, "system"); err != nil {
				return err
			}
		}

		order.Items = items
		order.Subtotal = subtotal
		order.Tax = subtotal.Mul(taxRate).Round(2)
		order.TotalAmount = order.Subtotal.Add(order.ShippingCost).Add(order.Tax).Sub(order.Discount)
		if err := r.Orders().Save(ctx, &order); err != nil {
			return NewInternal("db error")
		}

		if err := r.Carts().Clear(ctx, cartItems); err != nil {
			return NewInternal("db error")
		}
		if err := r.Stores().IncrementOrderCount(ctx, storeID); err != nil {
			return NewInternal("db error")
		}

		//通知の宛先はtx内で引いておき、送信はcommit後に行う
		if c, err := r.Users().FindByID(ctx, in.CustomerID); err == nil {
			customer, customerOK = c, true
		}
		if s, err := r.Stores().FindByID(ctx, storeID); err == nil {
			store, storeOK = s, true
		}
		created = order
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	u.sendOrderConfirmation(ctx, created, customer, customerOK, store, storeOK)
	return created, nil
}

func (u *OrderUsecase) GetOrderByID(ctx context.Context, orderID int64) (model.Order, error) {
	var order model.Order
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFound("order not found")
		}
		if err != nil {
			return NewInternal("db error")
		}
		order = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (u *OrderUsecase) GetOrderByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	var order model.Order
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNumber(ctx, orderNumber)
		if err == repo.ErrNotFound {
			return NewNotFound("order not found")
		}
		if err != nil {
			return NewInternal("db error")
		}
		order = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// ストア向けの注文一覧（オーナーのみ）
func (u *OrderUsecase) ListStoreOrders(ctx context.Context, f repo.StoreOrderListFilter, ownerEmail string) ([]model.Order, int64, error) {
	if f.Status != "" && !model.IsValidOrderStatus(f.Status) {
		return nil, 0, NewValidation("invalid order status: " + f.Status)
	}
	var (
		orders []model.Order
		total  int64
	)
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireStoreOwner(ctx, r, f.StoreID, ownerEmail); err != nil {
			return err
		}
		list, count, err := r.Orders().ListByStore(ctx, f)
		if err != nil {
			return NewInternal("db error")
		}
		orders = list
		total = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ストアのステータス別件数
func (u *OrderUsecase) GetOrderStats(ctx context.Context, storeID int64, ownerEmail string) (OrderStats, error) {
	var stats OrderStats
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireStoreOwner(ctx, r, storeID, ownerEmail); err != nil {
			return err
		}
		total, err := r.Orders().CountByStore(ctx, storeID)
		if err != nil {
			return NewInternal("db error")
		}
		stats = OrderStats{
			StoreID:      storeID,
			TotalOrders:  total,
			StatusCounts: map[model.OrderStatus]int64{},
		}
		for _, s := range []model.OrderStatus{
			model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped,
			model.OrderStatusDelivered, model.OrderStatusCancelled, model.OrderStatusReturnRequested,
			model.OrderStatusRefunded, model.OrderStatusExchanged,
		} {
			n, err := r.Orders().CountByStoreAndStatus(ctx, storeID, s)
			if err != nil {
				return NewInternal("db error")
			}
			stats.StatusCounts[s] = n
		}
		return nil
	})
	if err != nil {
		return OrderStats{}, err
	}
	return stats, nil
}

// 注文ステータスを更新する。
// CANCELLED / RETURN_REQUESTED だけはガード付きのワークフローを通す。
// それ以外のステータスは無条件で受け付ける（作業ラベル扱い）。
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, in UpdateOrderStatusInput) (model.Order, error) {
	if !model.IsValidOrderStatus(in.NewStatus) {
		return model.Order{}, NewValidation("invalid order status: " + in.NewStatus)
	}
	target := model.OrderStatus(in.NewStatus)

	switch target {
	case model.OrderStatusCancelled:
		return u.returns.CancelOrder(ctx, in.OrderID, in.Actor)
	case model.OrderStatusReturnRequested:
		return u.returns.RequestReturn(ctx, in.OrderID, in.Actor)
	}

	var updated model.Order
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, in.OrderID)
		if err == repo.ErrNotFound {
			return NewNotFound("order not found")
		}
		if err != nil {
			return NewInternal("db error")
		}

		order.Status = target
		switch target {
		case model.OrderStatusShipped:
			u.applyShippedSideEffects(ctx, r, &order)
		case model.OrderStatusDelivered:
			if err := u.applyDeliveredSideEffects(ctx, r, &order); err != nil {
				return err
			}
		}

		if err := r.Orders().Save(ctx, &order); err != nil {
			return NewInternal("db error")
		}
		updated = order
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return updated, nil
}

// SHIPPED：トラッキング付与と配送通知
func (u *OrderUsecase) applyShippedSideEffects(ctx context.Context, r repo.TxRepos, order *model.Order) {
	if order.TrackingNumber == "" {
		order.TrackingNumber = generateTrackingNumber()
	}
	if order.CarrierName == "" {
		order.CarrierName = "Standard Logistics"
	}
	eta := time.Now().Add(estimatedDeliveryLead)
	order.EstimatedDelivery = &eta

	customer, err := r.Users().FindByID(ctx, order.CustomerID)
	if err != nil {
		u.logger.Warn("shipping notification skipped: customer lookup failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}
	body := fmt.Sprintf(
		"Dear %s,\n\nYour order %s has shipped.\n\nCarrier: %s\nTracking Number: %s\nEstimated Delivery: %s",
		customer.Name, order.OrderNumber, order.CarrierName, order.TrackingNumber,
		eta.Format("2006-01-02"),
	)
	if err := u.notifier.Send(ctx, customer.Email, "Your order has shipped: "+order.OrderNumber, body); err != nil {
		u.logger.Warn("shipping notification failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

// DELIVERED：配達日時を記録し、未払いなら着払い扱いで入金済みにして売上計上する
func (u *OrderUsecase) applyDeliveredSideEffects(ctx context.Context, r repo.TxRepos, order *model.Order) error {
	now := time.Now()
	order.DeliveredAt = &now

	if order.PaymentStatus == model.OrderPaymentPending {
		order.PaymentStatus = model.OrderPaymentPaid
		if err := r.Stores().RecordRevenue(ctx, order.StoreID, order.TotalAmount, now); err != nil {
			return NewInternal("db error")
		}
	}
	return nil
}

// 注文確定の通知（顧客とオーナーの両方）。commit後に呼ぶ。失敗はログのみ。
func (u *OrderUsecase) sendOrderConfirmation(ctx context.Context, order model.Order, customer model.User, customerOK bool, store model.Store, storeOK bool) {
	if customerOK {
		body := fmt.Sprintf(
			"Dear %s,\n\nThank you for your order!\n\nOrder Number: %s\nTotal: %s\n\nWe will notify you when it ships.",
			customer.Name, order.OrderNumber, order.TotalAmount.StringFixed(2),
		)
		if err := u.notifier.Send(ctx, customer.Email, "Order Confirmation: "+order.OrderNumber, body); err != nil {
			u.logger.Warn("order confirmation failed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	} else {
		u.logger.Warn("order confirmation skipped: customer lookup failed",
			zap.Int64("order_id", order.ID))
	}

	if storeOK {
		body := fmt.Sprintf(
			"Dear %s,\n\nYou have received a new order.\n\nOrder Number: %s\nItems: %d\nTotal: %s",
			store.OwnerName, order.OrderNumber, len(order.Items), order.TotalAmount.StringFixed(2),
		)
		if err := u.notifier.Send(ctx, store.OwnerEmail, "New Order Received: "+order.OrderNumber, body); err != nil {
			u.logger.Warn("owner notification failed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	} else {
		u.logger.Warn("owner notification skipped: store lookup failed",
			zap.Int64("order_id", order.ID))
	}
}

// ORD-<unixミリ秒>-<UUID断片>。一意性はorder_numberのunique indexが最終防衛線。
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

func generateTrackingNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return "TRK" + suffix
}
