package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductID string

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Product is a read-only catalog snapshot.
type Product struct {
	ID             ProductID           `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Category       string              `json:"category,omitempty"`
	Price          decimal.Decimal     `json:"price"`
	CompareAtPrice decimal.NullDecimal `json:"compare_price"`
	Stock          int                 `json:"stock"`
	Images         []string            `json:"images,omitempty"`
	ViewCount      int64               `json:"views"`
	SalesCount     int64               `json:"sales_count"`
	Rating         Rating              `json:"rating"`
	CreatedAt      time.Time           `json:"created_at"`
}

func (p Product) InStock() bool { return p.Stock > 0 }

// DiscountPercent is the rounded saving against the compare-at price,
// or 0 when there is no higher compare-at price.
func (p Product) DiscountPercent() int {
	if !p.CompareAtPrice.Valid || !p.CompareAtPrice.Decimal.GreaterThan(p.Price) {
		return 0
	}
	ratio := p.Price.Div(p.CompareAtPrice.Decimal)
	return int(decimal.NewFromInt(1).Sub(ratio).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// CategoryAll is the pseudo-category that disables the category filter.
const CategoryAll = "all"

// Categories returns "all" followed by the distinct non-empty categories
// in first-seen order.
func Categories(products []Product) []string {
	out := []string{CategoryAll}
	seen := map[string]bool{}
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// PriceBounds returns the lowest and highest strictly positive price.
// ok is false when no product has a positive price.
func PriceBounds(products []Product) (lo, hi decimal.Decimal, ok bool) {
	for _, p := range products {
		if !p.Price.IsPositive() {
			continue
		}
		if !ok {
			lo, hi, ok = p.Price, p.Price, true
			continue
		}
		if p.Price.LessThan(lo) {
			lo = p.Price
		}
		if p.Price.GreaterThan(hi) {
			hi = p.Price
		}
	}
	return lo, hi, ok
}
