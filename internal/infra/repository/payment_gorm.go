package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, tx *model.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *PaymentGormRepository) FindByTransactionID(ctx context.Context, transactionID string) (model.PaymentTransaction, bool, error) {
	var t model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&t).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentTransaction{}, false, nil
	}
	if err != nil {
		return model.PaymentTransaction{}, false, err
	}
	return t, true, nil
}

func (r *PaymentGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.PaymentTransaction, error) {
	var t model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentTransaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PaymentTransaction{}, err
	}
	return t, nil
}

func (r *PaymentGormRepository) UpdateStatus(ctx context.Context, transactionID string, status model.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("transaction_id = ?", transactionID).
		Update("payment_status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
