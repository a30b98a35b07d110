package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// カート明細を一覧取得（追加順）
func (r *CartItemGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

func (r *CartItemGormRepository) FindByID(ctx context.Context, userID, itemID int64) (model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

func (r *CartItemGormRepository) FindLine(ctx context.Context, userID, productID int64, color, size string) (model.CartItem, bool, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND color = ? AND size = ?", userID, productID, color, size).
		First(&item).Error
	if isNotFound(err) {
		return model.CartItem{}, false, nil
	}
	if err != nil {
		return model.CartItem{}, false, err
	}
	return item, true, nil
}

// 同一行は数量加算
// SELECT→UPDATE だと同時追加で片方が消えるので INSERT ... ON CONFLICT の1文で合算する
func (r *CartItemGormRepository) UpsertLine(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	now := time.Now()
	item.ID = 0
	item.Version = 1
	item.CreatedAt = now
	item.UpdatedAt = now

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "color"}, {Name: "size"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
					"version":    gorm.Expr("cart_items.version + 1"),
					"updated_at": now,
				}),
			},
			clause.Returning{},
		).
		Create(&item).Error
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// version が一致したときだけ更新する
func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, userID, itemID, qty, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND user_id = ? AND version = ?", itemID, userID, expectedVersion).
		Updates(map[string]interface{}{
			"quantity":   qty,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// 0件: 行が消えたのか、先を越されたのか
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrVersionConflict
}

// 明細を削除
func (r *CartItemGormRepository) DeleteByID(ctx context.Context, userID, itemID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 0件でもエラーにしない
func (r *CartItemGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}
