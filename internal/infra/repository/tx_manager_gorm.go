package repository

import (
	"context"

	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
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

func (r *txReposGorm) Orders() repo.OrderRepository                    { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository            { return r.orderItems }
func (r *txReposGorm) Carts() repo.CartRepository                      { return r.carts }
func (r *txReposGorm) Products() repo.ProductRepository                { return r.products }
func (r *txReposGorm) Stores() repo.StoreRepository                    { return r.stores }
func (r *txReposGorm) Inventory() repo.InventoryTransactionRepository  { return r.inventory }
func (r *txReposGorm) Alerts() repo.LowStockAlertRepository            { return r.alerts }
func (r *txReposGorm) Payments() repo.PaymentTransactionRepository     { return r.payments }
func (r *txReposGorm) Categories() repo.CategoryRepository             { return r.categories }
func (r *txReposGorm) Tags() repo.TagRepository                        { return r.tags }
func (r *txReposGorm) Users() repo.UserRepository                      { return r.users }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:     NewOrderGormRepository(tx),
			orderItems: NewOrderItemGormRepository(tx),
			carts:      NewCartGormRepository(tx),
			products:   NewProductGormRepository(tx),
			stores:     NewStoreGormRepository(tx),
			inventory:  NewInventoryGormRepository(tx),
			alerts:     NewAlertGormRepository(tx),
			payments:   NewPaymentGormRepository(tx),
			categories: NewCategoryGormRepository(tx),
			tags:       NewTagGormRepository(tx),
			users:      NewUserGormRepository(tx),
		}
		return fn(r)
	})
}
