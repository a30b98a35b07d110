package model

import (
	"strings"
	"time"
)

// 配送先住所
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index;uniqueIndex:ux_addresses_default,where:is_default" json:"userId"`

	//宛名
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	//番地など
	Line1 string `gorm:"type:varchar(255);not null" json:"line1"`

	//建物名・部屋番号など
	Line2 string `gorm:"type:varchar(255)" json:"line2"`

	City  string `gorm:"type:varchar(255);not null" json:"city"`
	State string `gorm:"type:varchar(100);not null" json:"state"`

	//郵便番号
	PostalCode string `gorm:"type:varchar(20);not null" json:"postalCode"`
	Country    string `gorm:"type:varchar(2);not null;default:'US'" json:"country"`

	Phone string `gorm:"type:varchar(30)" json:"phone"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"isDefault"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// 注文に焼き込む1行表現
func (a Address) Format() string {
	parts := []string{a.Name, a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, a.City, strings.TrimSpace(a.State+" "+a.PostalCode), a.Country)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
