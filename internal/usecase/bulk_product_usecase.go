package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 価格の下限。0や負の価格には決してしない。
var minPrice = decimal.NewFromInt(1)

var percentBase = decimal.NewFromInt(100)

// 商品の一括操作。
// 所有チェックは全件一括（1件でも他人の商品ならまるごとUnauthorized）、
// 通過後の処理は1件ずつ独立（失敗はfailed_idsに積んで続行、巻き戻さない）。
type BulkProductUsecase struct {
	tm     repo.TransactionManager
	ledger *stockLedger
	logger *zap.Logger
}

func NewBulkProductUsecase(tm repo.TransactionManager, notifier Notifier, logger *zap.Logger) *BulkProductUsecase {
	return &BulkProductUsecase{
		tm:     tm,
		ledger: newStockLedger(notifier, logger),
		logger: logger,
	}
}

func (u *BulkProductUsecase) Execute(ctx context.Context, req model.BulkOperationRequest, ownerEmail string) (model.BulkOperationResult, error) {
	if err := validateBulkRequest(req); err != nil {
		return model.BulkOperationResult{}, err
	}

	//フェーズ1：ロードと所有ゲート。ここまでは一切書き込まない。
	var products []model.Product
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		loaded, err := r.Products().FindByIDs(ctx, req.ProductIDs)
		if err != nil {
			return NewInternal("db error")
		}

		storeOwner := map[int64]string{}
		for _, p := range loaded {
			email, ok := storeOwner[p.StoreID]
			if !ok {
				store, err := r.Stores().FindByID(ctx, p.StoreID)
				if err != nil {
					return NewInternal("db error")
				}
				email = store.OwnerEmail
				storeOwner[p.StoreID] = email
			}
			if email != ownerEmail {
				return NewUnauthorized(fmt.Sprintf("product %d is not owned by you", p.ID))
			}
		}
		products = loaded
		return nil
	})
	if err != nil {
		return model.BulkOperationResult{}, err
	}

	result := model.BulkOperationResult{
		TotalRequested: len(req.ProductIDs),
		Processed:      len(products),
		SuccessIDs:     []int64{},
		FailedIDs:      []int64{},
	}

	//見つからなかったIDは失敗扱い
	found := map[int64]bool{}
	for _, p := range products {
		found[p.ID] = true
	}
	for _, id := range req.ProductIDs {
		if !found[id] {
			result.FailedIDs = append(result.FailedIDs, id)
		}
	}

	//フェーズ2：1商品＝1トランザクション。失敗しても他の商品には波及しない。
	for i := range products {
		p := products[i]
		err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
			return u.applyOperation(ctx, r, req, p, ownerEmail)
		})
		if err != nil {
			u.logger.Warn("bulk operation item failed",
				zap.String("operation", string(req.OperationType)),
				zap.Int64("product_id", p.ID), zap.Error(err))
			result.FailedIDs = append(result.FailedIDs, p.ID)
			continue
		}
		result.SuccessIDs = append(result.SuccessIDs, p.ID)
	}
	return result, nil
}

func (u *BulkProductUsecase) applyOperation(ctx context.Context, r repo.TxRepos, req model.BulkOperationRequest, p model.Product, ownerEmail string) error {
	switch req.OperationType {
	case model.BulkOpUpdate:
		if req.Status != nil {
			p.Status = *req.Status
		}
		if req.Featured != nil {
			p.Featured = *req.Featured
		}
		return saveProduct(ctx, r, &p)

	case model.BulkOpDelete:
		if err := r.Products().Delete(ctx, p.ID); err != nil {
			return NewInternal("db error")
		}
		return nil

	case model.BulkOpPublish:
		p.Status = model.ProductStatusActive
		if p.PublishedAt == nil {
			now := time.Now()
			p.PublishedAt = &now
		}
		return saveProduct(ctx, r, &p)

	case model.BulkOpUnpublish:
		p.Status = model.ProductStatusInactive
		return saveProduct(ctx, r, &p)

	case model.BulkOpAdjustPrice:
		newPrice, markdown := adjustedPrice(p.Price, req)
		if markdown && p.OriginalPrice == nil {
			//値下げは元値を残して割引表示に使う
			prior := p.Price
			p.OriginalPrice = &prior
		}
		p.Price = newPrice
		return saveProduct(ctx, r, &p)

	case model.BulkOpAdjustStock:
		_, _, err := u.ledger.apply(ctx, r, StockAdjustmentInput{
			ProductID:      p.ID,
			QuantityChange: *req.StockQuantity,
			Type:           model.TransactionAdjustment,
			Reason:         "Bulk stock adjustment",
		}, ownerEmail)
		return err

	case model.BulkOpChangeCategory:
		category, err := r.Categories().FindByID(ctx, *req.CategoryID)
		if err == repo.ErrNotFound {
			return NewNotFound("category not found")
		}
		if err != nil {
			return NewInternal("db error")
		}
		if category.StoreID != p.StoreID {
			return NewValidation("category belongs to a different store")
		}
		p.CategoryID = &category.ID
		return saveProduct(ctx, r, &p)

	case model.BulkOpUpdateTags:
		return u.updateTags(ctx, r, req, p)
	}
	return NewValidation("unsupported operation type: " + string(req.OperationType))
}

// (現タグ − remove) ∪ add
func (u *BulkProductUsecase) updateTags(ctx context.Context, r repo.TxRepos, req model.BulkOperationRequest, p model.Product) error {
	remove := map[int64]bool{}
	for _, id := range req.RemoveTagIDs {
		remove[id] = true
	}

	keep := map[int64]model.Tag{}
	for _, t := range p.Tags {
		if !remove[t.ID] {
			keep[t.ID] = t
		}
	}

	if len(req.AddTagIDs) > 0 {
		added, err := r.Tags().FindByIDs(ctx, req.AddTagIDs)
		if err != nil {
			return NewInternal("db error")
		}
		for _, t := range added {
			keep[t.ID] = t
		}
	}

	tags := make([]model.Tag, 0, len(keep))
	for _, t := range keep {
		tags = append(tags, t)
	}
	if err := r.Products().ReplaceTags(ctx, p.ID, tags); err != nil {
		return NewInternal("db error")
	}
	return nil
}

// 調整後の価格と「値下げだったか」を返す。下限1で打ち切る。
func adjustedPrice(current decimal.Decimal, req model.BulkOperationRequest) (decimal.Decimal, bool) {
	var next decimal.Decimal
	switch req.PriceAdjustmentType {
	case model.PriceAdjustFixed:
		next = *req.Price
	case model.PriceAdjustIncreaseAmount:
		next = current.Add(*req.Price)
	case model.PriceAdjustDecreaseAmount:
		next = current.Sub(*req.Price)
	case model.PriceAdjustIncreasePercent:
		next = current.Add(current.Mul(*req.Percentage).Div(percentBase)).Round(2)
	case model.PriceAdjustDecreasePercent:
		next = current.Sub(current.Mul(*req.Percentage).Div(percentBase)).Round(2)
	}
	if next.LessThan(minPrice) {
		next = minPrice
	}
	return next, next.LessThan(current)
}

func saveProduct(ctx context.Context, r repo.TxRepos, p *model.Product) error {
	if err := r.Products().Save(ctx, p); err != nil {
		return NewInternal("db error")
	}
	return nil
}

// リクエスト単位のバリデーション。反復に入る前に落とす。
func validateBulkRequest(req model.BulkOperationRequest) error {
	if req.OperationType == "" {
		return NewValidation("operation type is required")
	}
	if len(req.ProductIDs) == 0 {
		return NewValidation("product ids are required")
	}

	switch req.OperationType {
	case model.BulkOpUpdate:
		if req.Status == nil && req.Featured == nil {
			return NewValidation("UPDATE requires status or featured")
		}
		if req.Status != nil {
			switch *req.Status {
			case model.ProductStatusActive, model.ProductStatusInactive, model.ProductStatusDraft:
			default:
				return NewValidation("invalid product status: " + string(*req.Status))
			}
		}
	case model.BulkOpDelete, model.BulkOpPublish, model.BulkOpUnpublish:
		//追加パラメータなし
	case model.BulkOpAdjustPrice:
		switch req.PriceAdjustmentType {
		case model.PriceAdjustFixed, model.PriceAdjustIncreaseAmount, model.PriceAdjustDecreaseAmount:
			if req.Price == nil {
				return NewValidation("ADJUST_PRICE requires a price for " + string(req.PriceAdjustmentType))
			}
		case model.PriceAdjustIncreasePercent, model.PriceAdjustDecreasePercent:
			if req.Percentage == nil {
				return NewValidation("ADJUST_PRICE requires a percentage for " + string(req.PriceAdjustmentType))
			}
		default:
			return NewValidation("invalid price adjustment type")
		}
	case model.BulkOpAdjustStock:
		if req.StockQuantity == nil {
			return NewValidation("ADJUST_STOCK requires a stock quantity change")
		}
	case model.BulkOpChangeCategory:
		if req.CategoryID == nil {
			return NewValidation("CHANGE_CATEGORY requires a category id")
		}
	case model.BulkOpUpdateTags:
		if len(req.AddTagIDs) == 0 && len(req.RemoveTagIDs) == 0 {
			return NewValidation("UPDATE_TAGS requires tag ids to add or remove")
		}
	default:
		return NewValidation("invalid operation type: " + string(req.OperationType))
	}
	return nil
}
