package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type PaymentTransactionRepository interface {
	Create(ctx context.Context, tx *model.PaymentTransaction) error

	//Webhookは自分が作っていないIDで来ることがあるのでfoundで返す
	FindByTransactionID(ctx context.Context, transactionID string) (model.PaymentTransaction, bool, error)

	FindByOrderID(ctx context.Context, orderID int64) (model.PaymentTransaction, error)
	UpdateStatus(ctx context.Context, transactionID string, status model.PaymentStatus) error
}
