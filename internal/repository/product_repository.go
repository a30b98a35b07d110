package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	// 管理画面では非公開商品も含める
	IncludeInactive bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//見つからないIDはマップに入らない
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	//公開中商品のカテゴリ（重複なし・昇順）
	Categories(ctx context.Context) ([]string, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
