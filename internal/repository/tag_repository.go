package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type TagRepository interface {
	FindByIDs(ctx context.Context, ids []int64) ([]model.Tag, error)
}
