package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type orderFixture struct {
	uc         *OrderUsecase
	returns    *ReturnUsecase
	repos      *txReposStub
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	carts      *CartRepoMock
	products   *ProductRepoMock
	stores     *StoreRepoMock
	inventory  *InventoryRepoMock
	payments   *PaymentRepoMock
	users      *UserRepoMock
	notifier   *NotifierMock
	gateway    *GatewayMock
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		carts:      new(CartRepoMock),
		products:   new(ProductRepoMock),
		stores:     new(StoreRepoMock),
		inventory:  new(InventoryRepoMock),
		payments:   new(PaymentRepoMock),
		users:      new(UserRepoMock),
		notifier:   new(NotifierMock),
		gateway:    new(GatewayMock),
	}
	f.repos = &txReposStub{
		orders:     f.orders,
		orderItems: f.orderItems,
		carts:      f.carts,
		products:   f.products,
		stores:     f.stores,
		inventory:  f.inventory,
		payments:   f.payments,
		users:      f.users,
	}
	tm := &txManagerStub{repos: f.repos}
	logger := zap.NewNop()
	paymentUC := NewPaymentUsecase(tm, f.gateway, f.notifier, logger, "usd")
	f.returns = NewReturnUsecase(tm, paymentUC, f.notifier, logger, 3)
	f.uc = NewOrderUsecase(tm, f.returns, f.notifier, logger, decimal.RequireFromString("5.00"))
	return f
}

func TestCreateOrder_HappyPath(t *testing.T) {
	f := newOrderFixture()

	f.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CustomerID: 7, ProductID: 1, Quantity: 2},
		{ID: 2, CustomerID: 7, ProductID: 2, Quantity: 1},
	}, nil)
	f.products.On("FindByIDs", mock.Anything, []int64{1, 2}).Return([]model.Product{
		{ID: 1, StoreID: 9, Name: "Mug", Price: decimal.RequireFromString("10.00"), StockQuantity: 10, LowStockThreshold: 0},
		{ID: 2, StoreID: 9, Name: "Sticker", Price: decimal.RequireFromString("5.50"), StockQuantity: model.UnlimitedStock},
	}, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Order).ID = 100
		}).Return(nil)

	f.products.On("FindByIDForUpdate", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, StoreID: 9, Name: "Mug", Price: decimal.RequireFromString("10.00"), StockQuantity: 10, LowStockThreshold: 0}, nil)
	f.products.On("FindByIDForUpdate", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, StoreID: 9, Name: "Sticker", Price: decimal.RequireFromString("5.50"), StockQuantity: model.UnlimitedStock}, nil)
	f.products.On("UpdateStockQuantity", mock.Anything, int64(1), 8).Return(nil)
	f.inventory.On("Create", mock.Anything, mock.MatchedBy(func(e *model.InventoryTransaction) bool {
		return e.ProductID == 1 && e.QuantityChange == -2 && e.Type == model.TransactionSale && e.OrderID != nil && *e.OrderID == 100
	})).Return(nil)

	var saved model.Order
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			saved = *args.Get(1).(*model.Order)
		}).Return(nil)
	f.carts.On("Clear", mock.Anything, mock.Anything).Return(nil)
	f.stores.On("IncrementOrderCount", mock.Anything, int64(9)).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(7)).
		Return(model.User{ID: 7, Name: "Alice", Email: "alice@example.com"}, nil)
	f.stores.On("FindByID", mock.Anything, int64(9)).
		Return(model.Store{ID: 9, OwnerEmail: "owner@example.com", OwnerName: "Owner"}, nil)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{CustomerID: 7, PaymentMethod: "card"})

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, out.Status)
	assert.Equal(t, model.OrderPaymentPending, out.PaymentStatus)
	assert.True(t, strings.HasPrefix(out.OrderNumber, "ORD-"))
	assert.Len(t, saved.Items, 2)

	//total = subtotal + shipping + tax - discount
	assert.Equal(t, "25.50", saved.Subtotal.StringFixed(2))
	assert.Equal(t, "2.55", saved.Tax.StringFixed(2))
	assert.Equal(t, "5.00", saved.ShippingCost.StringFixed(2))
	assert.Equal(t, "33.05", saved.TotalAmount.StringFixed(2))

	//無制限在庫の明細は台帳に載らない
	f.inventory.AssertNumberOfCalls(t, "Create", 1)
	f.carts.AssertCalled(t, "Clear", mock.Anything, mock.Anything)
	f.stores.AssertCalled(t, "IncrementOrderCount", mock.Anything, int64(9))
}

// commitが失敗した注文の確定メールは送られない
func TestCreateOrder_NoNotificationWhenCommitFails(t *testing.T) {
	f := newOrderFixture()
	tm := &failingCommitTxStub{repos: f.repos, err: assert.AnError}
	f.uc = NewOrderUsecase(tm, f.returns, f.notifier, zap.NewNop(), decimal.RequireFromString("5.00"))

	f.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CustomerID: 7, ProductID: 1, Quantity: 2},
	}, nil)
	f.products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, StoreID: 9, Name: "Mug", Price: decimal.RequireFromString("10.00"), StockQuantity: 10, LowStockThreshold: 0},
	}, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Order).ID = 100
		}).Return(nil)
	f.products.On("FindByIDForUpdate", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, StoreID: 9, Name: "Mug", Price: decimal.RequireFromString("10.00"), StockQuantity: 10, LowStockThreshold: 0}, nil)
	f.products.On("UpdateStockQuantity", mock.Anything, int64(1), 8).Return(nil)
	f.inventory.On("Create", mock.Anything, mock.AnythingOfType("*model.InventoryTransaction")).Return(nil)
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*model.Order")).Return(nil)
	f.carts.On("Clear", mock.Anything, mock.Anything).Return(nil)
	f.stores.On("IncrementOrderCount", mock.Anything, int64(9)).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(7)).
		Return(model.User{ID: 7, Name: "Alice", Email: "alice@example.com"}, nil)
	f.stores.On("FindByID", mock.Anything, int64(9)).
		Return(model.Store{ID: 9, OwnerEmail: "owner@example.com", OwnerName: "Owner"}, nil)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{CustomerID: 7, PaymentMethod: "card"})

	assert.Error(t, err)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()

	f.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{CustomerID: 7})

	assert.True(t, IsKind(err, KindEmptyCart))
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newOrderFixture()

	f.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CustomerID: 7, ProductID: 1, Quantity: 5},
	}, nil)
	f.products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, StoreID: 9, Name: "Mug", Price: decimal.RequireFromString("10.00"), StockQuantity: 2},
	}, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).Return(nil)
	f.products.On("FindByIDForUpdate", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, StoreID: 9, Name: "Mug", StockQuantity: 2}, nil)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{CustomerID: 7})

	assert.True(t, IsKind(err, KindInsufficientStock))
	ae, _ := AsAppError(err)
	assert.Contains(t, ae.Message, "Mug")
	f.products.AssertNotCalled(t, "UpdateStockQuantity", mock.Anything, mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCreateOrder_RejectsMultiStoreCart(t *testing.T) {
	f := newOrderFixture()

	f.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, ProductID: 1, Quantity: 1},
		{ID: 2, ProductID: 2, Quantity: 1},
	}, nil)
	f.products.On("FindByIDs", mock.Anything, []int64{1, 2}).Return([]model.Product{
		{ID: 1, StoreID: 1, StockQuantity: 5},
		{ID: 2, StoreID: 2, StockQuantity: 5},
	}, nil)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{CustomerID: 7})

	assert.True(t, IsKind(err, KindValidation))
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_ShippedAssignsTracking(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, OrderNumber: "ORD-1", CustomerID: 7, StoreID: 9, Status: model.OrderStatusProcessing}, nil)
	f.users.On("FindByID", mock.Anything, int64(7)).
		Return(model.User{ID: 7, Name: "Alice", Email: "alice@example.com"}, nil)
	f.notifier.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	var saved model.Order
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			saved = *args.Get(1).(*model.Order)
		}).Return(nil)

	out, err := f.uc.UpdateOrderStatus(context.Background(), UpdateOrderStatusInput{
		OrderID:   100,
		NewStatus: "SHIPPED",
		Actor:     "owner@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, out.Status)
	assert.True(t, strings.HasPrefix(saved.TrackingNumber, "TRK"))
	assert.NotEmpty(t, saved.CarrierName)
	assert.NotNil(t, saved.EstimatedDelivery)
}

func TestUpdateOrderStatus_DeliveredSettlesPendingPayment(t *testing.T) {
	f := newOrderFixture()

	total := decimal.RequireFromString("33.05")
	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, StoreID: 9, Status: model.OrderStatusShipped,
			PaymentStatus: model.OrderPaymentPending, TotalAmount: total}, nil)
	f.stores.On("RecordRevenue", mock.Anything, int64(9), total, mock.Anything).Return(nil)

	var saved model.Order
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			saved = *args.Get(1).(*model.Order)
		}).Return(nil)

	out, err := f.uc.UpdateOrderStatus(context.Background(), UpdateOrderStatusInput{OrderID: 100, NewStatus: "DELIVERED"})

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, out.Status)
	assert.Equal(t, model.OrderPaymentPaid, saved.PaymentStatus)
	assert.NotNil(t, saved.DeliveredAt)
	f.stores.AssertExpectations(t)
}

func TestUpdateOrderStatus_CancelledRoutesThroughGuards(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, OrderNumber: "ORD-1", CustomerID: 7, StoreID: 9,
			Status: model.OrderStatusShipped}, nil)

	_, err := f.uc.UpdateOrderStatus(context.Background(), UpdateOrderStatusInput{OrderID: 100, NewStatus: "CANCELLED"})

	assert.True(t, IsKind(err, KindInvalidStateTransition))
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.UpdateOrderStatus(context.Background(), UpdateOrderStatusInput{OrderID: 100, NewStatus: "LOST"})

	assert.True(t, IsKind(err, KindValidation))
}

func TestListStoreOrders_RejectsNonOwner(t *testing.T) {
	f := newOrderFixture()

	f.stores.On("FindByID", mock.Anything, int64(9)).
		Return(model.Store{ID: 9, OwnerEmail: "owner@example.com"}, nil)

	_, _, err := f.uc.ListStoreOrders(context.Background(),
		repo.StoreOrderListFilter{StoreID: 9, Page: 1, Limit: 20}, "intruder@example.com")

	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestGetOrderStats(t *testing.T) {
	f := newOrderFixture()

	f.stores.On("FindByID", mock.Anything, int64(9)).
		Return(model.Store{ID: 9, OwnerEmail: "owner@example.com"}, nil)
	f.orders.On("CountByStore", mock.Anything, int64(9)).Return(int64(12), nil)
	f.orders.On("CountByStoreAndStatus", mock.Anything, int64(9), model.OrderStatusPending).Return(int64(4), nil)
	f.orders.On("CountByStoreAndStatus", mock.Anything, int64(9), mock.Anything).Return(int64(1), nil)

	stats, err := f.uc.GetOrderStats(context.Background(), 9, "owner@example.com")

	assert.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalOrders)
	assert.Equal(t, int64(4), stats.StatusCounts[model.OrderStatusPending])
	assert.Len(t, stats.StatusCounts, 8)
}
