package model

import (
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_EffectivePrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(45)}
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(45)))

	d := decimal.NewFromInt(35)
	p.DiscountPrice = &d
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(35)))
}

func TestProduct_CanonicalVariants(t *testing.T) {
	p := Product{
		Colors: pq.StringArray{"#000000", "#565E63"},
		Sizes:  pq.StringArray{"S", "M", "L", "XL"},
	}

	c, ok := p.CanonicalColor("#565e63")
	assert.True(t, ok)
	assert.Equal(t, "#565E63", c)

	s, ok := p.CanonicalSize(" xl ")
	assert.True(t, ok)
	assert.Equal(t, "XL", s)

	_, ok = p.CanonicalColor("#FFFFFF")
	assert.False(t, ok)
	_, ok = p.CanonicalSize("")
	assert.False(t, ok)

	// バリエーション無しなら入力をそのまま使う
	plain := Product{}
	s, ok = plain.CanonicalSize(" anything ")
	assert.True(t, ok)
	assert.Equal(t, "anything", s)
	c, ok = plain.CanonicalColor("")
	assert.True(t, ok)
	assert.Equal(t, "", c)
}

func TestQuotePrice(t *testing.T) {
	q := QuotePrice(decimal.NewFromInt(245), decimal.RequireFromString("0.08"), decimal.NewFromInt(15))
	assert.Equal(t, "245", q.Subtotal.String())
	assert.Equal(t, "19.6", q.Tax.String())
	assert.Equal(t, "15", q.ShippingFee.String())
	assert.True(t, q.Total.Equal(decimal.RequireFromString("279.60")))

	// 端数は第2位で丸め
	q = QuotePrice(decimal.RequireFromString("33.33"), decimal.RequireFromString("0.08"), decimal.Zero)
	assert.Equal(t, "2.67", q.Tax.String())
	assert.Equal(t, "36", q.Total.String())
}

func TestAddress_Format(t *testing.T) {
	a := Address{Name: "Jane Doe", Line1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US"}
	assert.Equal(t, "Jane Doe, 1 Main St, Springfield, IL 62701, US", a.Format())
}
