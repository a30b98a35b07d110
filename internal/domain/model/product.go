package model

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品
// stock_count は0未満にならない（DBのcheck制約 + 条件付きUPDATEで守る）
type Product struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string           `gorm:"type:varchar(255);not null" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	Price         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	DiscountPrice *decimal.Decimal `gorm:"type:numeric(12,2)" json:"discountPrice,omitempty"`
	StockCount    int64            `gorm:"not null;default:0;check:stock_count >= 0" json:"stockCount"`
	InStock       bool             `gorm:"not null;default:false" json:"inStock"`
	Colors        pq.StringArray   `gorm:"type:text[]" json:"colors"`
	Sizes         pq.StringArray   `gorm:"type:text[]" json:"sizes"`
	Images        pq.StringArray   `gorm:"type:text[]" json:"images"`
	Category      string           `gorm:"type:varchar(100);not null;index" json:"category"`
	IsActive      bool             `gorm:"not null;default:false" json:"isActive"`
	CreatedAt     time.Time        `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time        `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// 割引価格があればそちらを使う
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// 商品側の表記に揃えた値を返す（大文字小文字は区別しない）
// バリエーション未定義の商品はどの値も受け付ける
func (p Product) CanonicalColor(color string) (string, bool) {
	return canonicalFold(p.Colors, color)
}

func (p Product) CanonicalSize(size string) (string, bool) {
	return canonicalFold(p.Sizes, size)
}

// 一覧・スナップショット用の代表画像
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func canonicalFold(values []string, v string) (string, bool) {
	v = strings.TrimSpace(v)
	if len(values) == 0 {
		return v, true
	}
	for _, x := range values {
		if strings.EqualFold(x, v) {
			return x, true
		}
	}
	return "", false
}
