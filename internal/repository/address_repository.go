package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 住所帳。ID指定の操作はすべて持ち主で絞る（他人の住所は ErrNotFound）
type AddressRepository interface {
	// 最初の1件は自動でデフォルトになる
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//デフォルト住所が先頭
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	FindForUser(ctx context.Context, userID, addressID int64) (model.Address, error)

	// 注文に焼き込む1行表現
	ShippingSnapshot(ctx context.Context, userID, addressID int64) (string, error)

	// address.UserID の住所だけ更新する
	Update(ctx context.Context, address model.Address) error

	// デフォルトを消したら残りの一番古い住所をデフォルトにする
	Delete(ctx context.Context, userID, addressID int64) error

	//同じユーザーの他の住所は false に戻す
	SetDefault(ctx context.Context, userID, addressID int64) error
}
