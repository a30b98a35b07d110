package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

// 明細の数量が 0 以下、商品名が空
var ErrInvalidOrderItem = errors.New("invalid order item")

type OrderItemRepository interface {
	// 採番済みの明細を入力と同じ順で返す
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error)

	// id 昇順（作成順）。無ければ空スライス
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
