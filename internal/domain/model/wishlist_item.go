package model

import "time"

// ウィッシュリスト（user, product で一意）
type WishlistItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:ux_wishlist_items_user_product,priority:1" json:"userId"`
	ProductID int64     `gorm:"not null;uniqueIndex:ux_wishlist_items_user_product,priority:2" json:"productId"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}
