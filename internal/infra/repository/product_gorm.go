package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開商品のみを、検索/カテゴリ/価格帯/ソート/ページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if !q.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}

	// 名前・説明・カテゴリを対象
	if kw := strings.TrimSpace(q.Q); kw != "" {
		like := "%" + kw + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ? OR category ILIKE ?", like, like, like)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		tx = tx.Where("LOWER(category) = LOWER(?)", c)
	}

	//価格帯（割引後の価格で比較）
	if q.MinPrice != nil {
		tx = tx.Where("COALESCE(discount_price, price) >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("COALESCE(discount_price, price) <= ?", *q.MaxPrice)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	switch q.Sort {
	case "price_asc":
		tx = tx.Order("COALESCE(discount_price, price) asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("COALESCE(discount_price, price) desc").Order("id desc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	limit, offset := pageOffset(q.Page, q.Limit, 100)
	if err := tx.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductGormRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category asc").
		Pluck("category", &cats).Error
	if err != nil {
		return []string{}, err
	}
	return cats, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	p.InStock = p.StockCount > 0
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新（在庫は InventoryRepository 経由でのみ変える）
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"discount_price": p.DiscountPrice,
		"colors":         p.Colors,
		"sizes":          p.Sizes,
		"images":         p.Images,
		"category":       p.Category,
		"is_active":      p.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（論理）
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
