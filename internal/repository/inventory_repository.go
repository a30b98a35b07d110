package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// in_stock は stock_count から常に導出して一緒に書く
type InventoryRepository interface {
	// 在庫の現在値を設定。変更前の値を返す
	SetStock(ctx context.Context, productID int64, newStock int64) (int64, error)

	// 在庫が足りるときだけ減算（足りないなら false）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
