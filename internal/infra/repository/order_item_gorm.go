package repository

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// 1回のINSERTに入れる明細数
const orderItemBatchSize = 100

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error) {
	if len(items) == 0 {
		return []model.OrderItem{}, nil
	}

	rows := make([]model.OrderItem, 0, len(items))
	for i, it := range items {
		if it.Quantity <= 0 || strings.TrimSpace(it.ProductName) == "" {
			return nil, fmt.Errorf("line %d (product %d): %w", i, it.ProductID, repo.ErrInvalidOrderItem)
		}
		it.ID = 0
		it.OrderID = orderID
		rows = append(rows, it)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(&rows, orderItemBatchSize).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}
