package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestDiscountPercent(t *testing.T) {
	p := Product{Price: price("75"), CompareAtPrice: decimal.NewNullDecimal(price("100"))}
	assert.Equal(t, 25, p.DiscountPercent())

	p = Product{Price: price("200"), CompareAtPrice: decimal.NewNullDecimal(price("300"))}
	assert.Equal(t, 33, p.DiscountPercent())

	p = Product{Price: price("100"), CompareAtPrice: decimal.NewNullDecimal(price("100"))}
	assert.Zero(t, p.DiscountPercent())

	assert.Zero(t, Product{Price: price("100")}.DiscountPercent())
}

func TestCategories(t *testing.T) {
	products := []Product{{Category: "men"}, {Category: ""}, {Category: "kids"}, {Category: "men"}}
	assert.Equal(t, []string{"all", "men", "kids"}, Categories(products))
	assert.Equal(t, []string{"all"}, Categories(nil))
}

func TestPriceBounds(t *testing.T) {
	lo, hi, ok := PriceBounds([]Product{{Price: price("0")}, {Price: price("50")}, {Price: price("10")}, {Price: price("90")}})
	assert.True(t, ok)
	assert.True(t, price("10").Equal(lo))
	assert.True(t, price("90").Equal(hi))

	_, _, ok = PriceBounds([]Product{{Price: price("0")}})
	assert.False(t, ok)
}
