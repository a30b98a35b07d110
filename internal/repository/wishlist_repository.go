package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type WishlistRepository interface {
	//新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)
	//既にあれば何もしない
	Add(ctx context.Context, userID, productID int64) error
	//無くてもエラーにしない
	Remove(ctx context.Context, userID, productID int64) error
	Contains(ctx context.Context, userID, productID int64) (bool, error)
}
