package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// カート明細。全メソッドが userID で所有者を絞る。
type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)

	//他人の明細も ErrNotFound
	FindByID(ctx context.Context, userID, itemID int64) (model.CartItem, error)

	//同じ (product, color, size) の行があれば返す
	FindLine(ctx context.Context, userID, productID int64, color, size string) (model.CartItem, bool, error)

	// 同一行は数量を加算する（1文で合算）
	UpsertLine(ctx context.Context, item model.CartItem) (model.CartItem, error)

	// expectedVersion が一致したときだけ数量を置き換える
	// 不一致は ErrVersionConflict、行が無ければ ErrNotFound
	UpdateQuantity(ctx context.Context, userID, itemID, qty, expectedVersion int64) error

	DeleteByID(ctx context.Context, userID, itemID int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
}
