package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点のスナップショット。商品が後で変わってもここは変えない。
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"not null;index" json:"orderId"`
	ProductID   int64           `gorm:"not null;index" json:"productId"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	Color       string          `gorm:"type:varchar(32);not null;default:''" json:"color"`
	Size        string          `gorm:"type:varchar(32);not null;default:''" json:"size"`
	Image       string          `gorm:"type:text" json:"image"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}
