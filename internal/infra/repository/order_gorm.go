package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 新しい順。同時刻はIDで決める
const orderNewestFirst = "created_at desc, id desc"

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id asc")
	})
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := withItems(r.db.WithContext(ctx)).Where("id = ?", orderID).First(&o).Error
	if err != nil {
		return model.Order{}, translate(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	limit, offset := pageOffset(page, limit, 100)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	err := withItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order(orderNewestFirst).
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}
	return items, total, nil
}

// 明細は OrderItemRepository で別に入れる
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	order.Items = nil
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, translate(err)
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrVersionConflict
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	var o model.Order
	err := withItems(r.db.WithContext(ctx)).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error
	if isNotFound(err) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	limit, offset := pageOffset(f.Page, f.Limit, 100)

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	if err := withItems(q).Order(orderNewestFirst).Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}
	return items, total, nil
}
