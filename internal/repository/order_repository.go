package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 一覧はすべて新しい順（created_at desc, id desc）。明細も一緒に読む。
type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	//同じ冪等キーが既にあれば ErrDuplicate
	Create(ctx context.Context, order model.Order) (int64, error)

	// from のときだけ to に変える（他の更新が先なら ErrVersionConflict）
	UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
