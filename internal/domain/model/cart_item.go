package model

import "time"

// カートの明細
// (user, product, color, size) で1行。同じ組み合わせは数量を合算する。
// Version は数量変更の楽観ロック用。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:ux_cart_items_line,priority:1" json:"userId"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:ux_cart_items_line,priority:2" json:"productId"`
	Color     string    `gorm:"type:varchar(32);not null;default:'';uniqueIndex:ux_cart_items_line,priority:3" json:"color"`
	Size      string    `gorm:"type:varchar(32);not null;default:'';uniqueIndex:ux_cart_items_line,priority:4" json:"size"`
	Quantity  int64     `gorm:"not null;check:quantity > 0" json:"quantity"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
