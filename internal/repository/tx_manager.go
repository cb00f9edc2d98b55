package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Carts() CartRepository
	Products() ProductRepository
	Stores() StoreRepository
	Inventory() InventoryTransactionRepository
	Alerts() LowStockAlertRepository
	Payments() PaymentTransactionRepository
	Categories() CategoryRepository
	Tags() TagRepository
	Users() UserRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
