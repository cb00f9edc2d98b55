package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// =====================
// TxManager / TxRepos stubs
// =====================

// トランザクションの開始/commitは素通しで、固定のreposをfnに渡す
type txManagerStub struct {
	repos repo.TxRepos
}

func (m *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

// fnは成功するがcommitで失敗するTransactionManager
type failingCommitTxStub struct {
	repos repo.TxRepos
	err   error
}

func (m *failingCommitTxStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := fn(m.repos); err != nil {
		return err
	}
	return m.err
}

type txReposStub struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	products   repo.ProductRepository
	stores     repo.StoreRepository
	inventory  repo.InventoryTransactionRepository
	alerts     repo.LowStockAlertRepository
	payments   repo.PaymentTransactionRepository
	categories repo.CategoryRepository
	tags       repo.TagRepository
	users      repo.UserRepository
}

func (r *txReposStub) Orders() repo.OrderRepository                   { return r.orders }
func (r *txReposStub) OrderItems() repo.OrderItemRepository           { return r.orderItems }
func (r *txReposStub) Carts() repo.CartRepository                     { return r.carts }
func (r *txReposStub) Products() repo.ProductRepository               { return r.products }
func (r *txReposStub) Stores() repo.StoreRepository                   { return r.stores }
func (r *txReposStub) Inventory() repo.InventoryTransactionRepository { return r.inventory }
func (r *txReposStub) Alerts() repo.LowStockAlertRepository           { return r.alerts }
func (r *txReposStub) Payments() repo.PaymentTransactionRepository    { return r.payments }
func (r *txReposStub) Categories() repo.CategoryRepository            { return r.categories }
func (r *txReposStub) Tags() repo.TagRepository                       { return r.tags }
func (r *txReposStub) Users() repo.UserRepository                     { return r.users }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	args := m.Called(ctx, orderNumber)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, o *model.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *OrderRepoMock) Save(ctx context.Context, o *model.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) ListByStore(ctx context.Context, f repo.StoreOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, status)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) CountByStore(ctx context.Context, storeID int64) (int64, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) CountByStoreAndStatus(ctx context.Context, storeID int64, status model.OrderStatus) (int64, error) {
	args := m.Called(ctx, storeID, status)
	return args.Get(0).(int64), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ListByCustomerID(ctx context.Context, customerID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, customerID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartRepoMock) Clear(ctx context.Context, items []model.CartItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListByStoreID(ctx context.Context, storeID int64) ([]model.Product, error) {
	args := m.Called(ctx, storeID)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Save(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) UpdateStockQuantity(ctx context.Context, productID int64, newQuantity int) error {
	args := m.Called(ctx, productID, newQuantity)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) ReplaceTags(ctx context.Context, productID int64, tags []model.Tag) error {
	args := m.Called(ctx, productID, tags)
	return args.Error(0)
}

type StoreRepoMock struct{ mock.Mock }

func (m *StoreRepoMock) FindByID(ctx context.Context, id int64) (model.Store, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *StoreRepoMock) ListAll(ctx context.Context) ([]model.Store, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Store)
	return items, args.Error(1)
}

func (m *StoreRepoMock) IncrementOrderCount(ctx context.Context, storeID int64) error {
	args := m.Called(ctx, storeID)
	return args.Error(0)
}

func (m *StoreRepoMock) RecordRevenue(ctx context.Context, storeID int64, amount decimal.Decimal, date time.Time) error {
	args := m.Called(ctx, storeID, amount, date)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) Create(ctx context.Context, tx *model.InventoryTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *InventoryRepoMock) ListByProductID(ctx context.Context, productID int64) ([]model.InventoryTransaction, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.InventoryTransaction)
	return items, args.Error(1)
}

func (m *InventoryRepoMock) ListRecentByStoreID(ctx context.Context, storeID int64, limit int) ([]model.InventoryTransaction, error) {
	args := m.Called(ctx, storeID, limit)
	items, _ := args.Get(0).([]model.InventoryTransaction)
	return items, args.Error(1)
}

type AlertRepoMock struct{ mock.Mock }

func (m *AlertRepoMock) Create(ctx context.Context, alert *model.LowStockAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *AlertRepoMock) FindByID(ctx context.Context, id int64) (model.LowStockAlert, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(model.LowStockAlert)
	return a, args.Error(1)
}

func (m *AlertRepoMock) Save(ctx context.Context, alert *model.LowStockAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *AlertRepoMock) ExistsUnacknowledged(ctx context.Context, productID int64) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *AlertRepoMock) ListByStoreID(ctx context.Context, storeID int64, includeAcknowledged bool) ([]model.LowStockAlert, error) {
	args := m.Called(ctx, storeID, includeAcknowledged)
	items, _ := args.Get(0).([]model.LowStockAlert)
	return items, args.Error(1)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) Create(ctx context.Context, tx *model.PaymentTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *PaymentRepoMock) FindByTransactionID(ctx context.Context, transactionID string) (model.PaymentTransaction, bool, error) {
	args := m.Called(ctx, transactionID)
	tx, _ := args.Get(0).(model.PaymentTransaction)
	return tx, args.Bool(1), args.Error(2)
}

func (m *PaymentRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.PaymentTransaction, error) {
	args := m.Called(ctx, orderID)
	tx, _ := args.Get(0).(model.PaymentTransaction)
	return tx, args.Error(1)
}

func (m *PaymentRepoMock) UpdateStatus(ctx context.Context, transactionID string, status model.PaymentStatus) error {
	args := m.Called(ctx, transactionID, status)
	return args.Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

type TagRepoMock struct{ mock.Mock }

func (m *TagRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Tag, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Tag)
	return items, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

// =====================
// External collaborator mocks
// =====================

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Send(ctx context.Context, recipient string, subject string, body string) error {
	args := m.Called(ctx, recipient, subject, body)
	return args.Error(0)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (PaymentIntent, error) {
	args := m.Called(ctx, amountMinorUnits, currency, metadata)
	intent, _ := args.Get(0).(PaymentIntent)
	return intent, args.Error(1)
}

func (m *GatewayMock) Refund(ctx context.Context, transactionID string) (string, error) {
	args := m.Called(ctx, transactionID)
	return args.String(0), args.Error(1)
}
