package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

func (r *WishlistGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&items).Error; err != nil {
		return []model.WishlistItem{}, err
	}
	return items, nil
}

// 重複は DO NOTHING
func (r *WishlistGormRepository) Add(ctx context.Context, userID, productID int64) error {
	item := model.WishlistItem{UserID: userID, ProductID: productID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&item).Error
}

func (r *WishlistGormRepository) Remove(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{}).Error
}

func (r *WishlistGormRepository) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
