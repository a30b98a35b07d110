package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// 許可される遷移だけを持つ。delivered / cancelled は終端。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

// 文字列からステータスへ（大文字小文字は区別しない）
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, true
	default:
		return "", false
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// 同じステータスへの遷移も不可
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"orderNumber"`
	UserID          int64           `gorm:"not null;index;uniqueIndex:ux_orders_user_idempotency,priority:1" json:"userId"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	ShippingFee     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shippingFee"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shippingAddress"`
	PaymentMethod   string          `gorm:"type:varchar(32);not null" json:"paymentMethod"`
	IdempotencyKey  *string         `gorm:"type:varchar(255);uniqueIndex:ux_orders_user_idempotency,priority:2" json:"-"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
