package model

import "github.com/shopspring/decimal"

// 小計・税・送料・合計
type PriceBreakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
}

// 税は小数第2位で丸める。送料は注文ごとに一律。
func QuotePrice(subtotal, taxRate, shippingFee decimal.Decimal) PriceBreakdown {
	tax := subtotal.Mul(taxRate).Round(2)
	return PriceBreakdown{
		Subtotal:    subtotal.Round(2),
		Tax:         tax,
		ShippingFee: shippingFee.Round(2),
		Total:       subtotal.Add(tax).Add(shippingFee).Round(2),
	}
}
