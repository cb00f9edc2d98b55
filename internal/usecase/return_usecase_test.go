package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"marketplace/internal/domain/model"
)

func deliveredOrder(deliveredAgo time.Duration) model.Order {
	deliveredAt := time.Now().Add(-deliveredAgo)
	return model.Order{
		ID:          100,
		OrderNumber: "ORD-1",
		CustomerID:  7,
		StoreID:     9,
		Status:      model.OrderStatusDelivered,
		DeliveredAt: &deliveredAt,
	}
}

func TestCancelOrder_RestocksAndCancels(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, OrderNumber: "ORD-1", CustomerID: 7, StoreID: 9,
			Status: model.OrderStatusProcessing}, nil)
	f.orderItems.On("ListByOrderID", mock.Anything, int64(100)).
		Return([]model.OrderItem{{OrderID: 100, ProductID: 1, Quantity: 2}}, nil)
	f.products.On("FindByIDForUpdate", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, StoreID: 9, StockQuantity: 8, LowStockThreshold: 0}, nil)
	f.products.On("UpdateStockQuantity", mock.Anything, int64(1), 10).Return(nil)
	f.inventory.On("Create", mock.Anything, mock.MatchedBy(func(e *model.InventoryTransaction) bool {
		return e.Type == model.TransactionReturn && e.QuantityChange == 2
	})).Return(nil)

	var saved model.Order
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			saved = *args.Get(1).(*model.Order)
		}).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(7)).
		Return(model.User{ID: 7, Name: "Alice", Email: "alice@example.com"}, nil)
	f.stores.On("FindByID", mock.Anything, int64(9)).
		Return(model.Store{ID: 9, OwnerEmail: "owner@example.com"}, nil)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := f.returns.CancelOrder(context.Background(), 100, "alice")

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, out.Status)
	assert.Equal(t, model.OrderStatusCancelled, saved.Status)
	//戻す明細は同一tx内で取り直す
	f.orderItems.AssertCalled(t, "ListByOrderID", mock.Anything, int64(100))
	f.inventory.AssertExpectations(t)
	//前払いではないので返金は走らない
	f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestCancelOrder_GuardsShippedOrders(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, OrderNumber: "ORD-1", Status: model.OrderStatusShipped}, nil)

	_, err := f.returns.CancelOrder(context.Background(), 100, "alice")

	assert.True(t, IsKind(err, KindInvalidStateTransition))
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.inventory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestReturn_WithinWindow(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(deliveredOrder(29*24*time.Hour), nil)

	var saved model.Order
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			saved = *args.Get(1).(*model.Order)
		}).Return(nil)
	f.stores.On("FindByID", mock.Anything, int64(9)).
		Return(model.Store{ID: 9, OwnerEmail: "owner@example.com"}, nil)
	f.notifier.On("Send", mock.Anything, "owner@example.com", mock.Anything, mock.Anything).Return(nil)

	out, err := f.returns.RequestReturn(context.Background(), 100, "alice")

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusReturnRequested, out.Status)
	assert.Equal(t, model.OrderStatusReturnRequested, saved.Status)
}

func TestRequestReturn_WindowExpired(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(deliveredOrder(30*24*time.Hour+time.Second), nil)

	_, err := f.returns.RequestReturn(context.Background(), 100, "alice")

	assert.True(t, IsKind(err, KindReturnWindowExpired))
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRequestReturn_OnlyFromDelivered(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, OrderNumber: "ORD-1", Status: model.OrderStatusShipped}, nil)

	_, err := f.returns.RequestReturn(context.Background(), 100, "alice")

	assert.True(t, IsKind(err, KindInvalidStateTransition))
}

func TestProcessReturn_ExchangeRestocksWithoutRefund(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, OrderNumber: "ORD-1", CustomerID: 7, StoreID: 9,
			Status:        model.OrderStatusReturnRequested,
			PaymentStatus: model.OrderPaymentPaid}, nil)
	f.orderItems.On("ListByOrderID", mock.Anything, int64(100)).
		Return([]model.OrderItem{{OrderID: 100, ProductID: 1, Quantity: 1}}, nil)
	f.products.On("FindByIDForUpdate", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, StoreID: 9, StockQuantity: 5, LowStockThreshold: 0}, nil)
	f.products.On("UpdateStockQuantity", mock.Anything, int64(1), 6).Return(nil)
	f.inventory.On("Create", mock.Anything, mock.AnythingOfType("*model.InventoryTransaction")).Return(nil)

	var saved model.Order
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			saved = *args.Get(1).(*model.Order)
		}).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(7)).
		Return(model.User{ID: 7, Name: "Alice", Email: "alice@example.com"}, nil)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := f.returns.ProcessReturn(context.Background(), 100, false, "owner")

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusExchanged, out.Status)
	assert.Equal(t, model.OrderStatusExchanged, saved.Status)
	f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestProcessReturn_RequiresPendingReturn(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, OrderNumber: "ORD-1", Status: model.OrderStatusDelivered}, nil)

	_, err := f.returns.ProcessReturn(context.Background(), 100, true, "owner")

	assert.True(t, IsKind(err, KindInvalidStateTransition))
}

func TestSendPendingReturnReminders_HonorsBudget(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("ListByStatus", mock.Anything, model.OrderStatusReturnRequested).Return([]model.Order{
		{ID: 1, OrderNumber: "ORD-1", StoreID: 9, Status: model.OrderStatusReturnRequested, ReminderCount: 0},
		{ID: 2, OrderNumber: "ORD-2", StoreID: 9, Status: model.OrderStatusReturnRequested, ReminderCount: 3},
	}, nil)
	f.stores.On("FindByID", mock.Anything, int64(9)).
		Return(model.Store{ID: 9, OwnerEmail: "owner@example.com"}, nil)
	f.notifier.On("Send", mock.Anything, "owner@example.com", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("Save", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return o.ID == 1 && o.ReminderCount == 1
	})).Return(nil)

	err := f.returns.SendPendingReturnReminders(context.Background())

	assert.NoError(t, err)
	//上限に達した注文には送らない
	f.notifier.AssertNumberOfCalls(t, "Send", 1)
	f.orders.AssertExpectations(t)
}
