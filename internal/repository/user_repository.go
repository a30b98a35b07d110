package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type UserRepository interface {
	//メール重複は ErrDuplicate
	Create(ctx context.Context, user *model.User) error
	//見つからなければ ErrNotFound
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// アクティブかどうか・ロール・最後のログインなど
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１（発行済みトークンが全部無効になる）
	IncrementTokenVersion(ctx context.Context, userID int64) error
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
}
