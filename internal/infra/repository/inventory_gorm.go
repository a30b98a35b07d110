package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定。行ロックして変更前の値を読む
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, newStock int64) (int64, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "stock_count").
		Where("id = ?", productID).
		First(&p).Error
	if err != nil {
		return 0, translate(err)
	}

	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock_count": newStock,
			"in_stock":    newStock > 0,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, repo.ErrNotFound
	}
	return p.StockCount, nil
}

// 在庫が足りるときだけ減らす（compare-and-decrement）
// in_stock も同じUPDATEで導出する
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock_count >= ?", productID, qty).
		Updates(map[string]interface{}{
			"stock_count": gorm.Expr("stock_count - ?", qty),
			"in_stock":    gorm.Expr("stock_count - ? > 0", qty),
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（キャンセル）
// 論理削除済みの商品にも戻す
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock_count": gorm.Expr("stock_count + ?", qty),
			"in_stock":    gorm.Expr("stock_count + ? > 0", qty),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
