package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (model.Category, error)
}
