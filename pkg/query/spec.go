package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type SortKey string

const (
	SortNewest      SortKey = "newest"
	SortOldest      SortKey = "oldest"
	SortPriceLow    SortKey = "price-low"
	SortPriceHigh   SortKey = "price-high"
	SortPopular     SortKey = "popular"
	SortBestSelling SortKey = "best-selling"
)

var SortKeys = []SortKey{SortNewest, SortOldest, SortPriceLow, SortPriceHigh, SortPopular, SortBestSelling}

func (k SortKey) Valid() bool {
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}

// All disables the categorical predicate.
const All = "all"

const DefaultPageSize = 12

// Spec describes one query over a collection. It is a value: the With
// methods return a modified copy and never touch the receiver.
type Spec struct {
	Text     string
	Category string
	Min      decimal.NullDecimal
	Max      decimal.NullDecimal
	Sort     SortKey
	Page     int
	PageSize int
}

func NewSpec(pageSize int) Spec {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Spec{Category: All, Sort: SortNewest, Page: 1, PageSize: pageSize}
}

func (s Spec) WithText(text string) Spec {
	s.Text = text
	s.Page = 1
	return s
}

func (s Spec) WithCategory(category string) Spec {
	s.Category = category
	s.Page = 1
	return s
}

func (s Spec) WithRange(min, max decimal.NullDecimal) Spec {
	s.Min, s.Max = min, max
	s.Page = 1
	return s
}

func (s Spec) WithSort(key SortKey) Spec {
	s.Sort = key
	s.Page = 1
	return s
}

func (s Spec) WithPage(page int) Spec {
	s.Page = page
	return s
}

func (s Spec) categoryActive() bool {
	return s.Category != "" && s.Category != All
}

// Values serialises s using the same tokens the storefront API uses.
func (s Spec) Values() url.Values {
	v := url.Values{}
	if s.Text != "" {
		v.Set("q", s.Text)
	}
	if s.categoryActive() {
		v.Set("category", s.Category)
	}
	if s.Min.Valid {
		v.Set("min", s.Min.Decimal.String())
	}
	if s.Max.Valid {
		v.Set("max", s.Max.Decimal.String())
	}
	if s.Sort != "" {
		v.Set("sort", string(s.Sort))
	}
	if s.Page > 0 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	return v
}

// SpecFromValues parses URL query parameters. categoryParam names the
// parameter carrying the categorical filter ("category" for products,
// "status" for orders).
func SpecFromValues(v url.Values, categoryParam string, pageSize int) (Spec, error) {
	s := NewSpec(pageSize)
	s.Text = strings.TrimSpace(v.Get("q"))
	if c := strings.TrimSpace(v.Get(categoryParam)); c != "" {
		s.Category = c
	}
	for _, r := range []struct {
		name string
		dst  *decimal.NullDecimal
	}{{"min", &s.Min}, {"max", &s.Max}} {
		raw := strings.TrimSpace(v.Get(r.name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Spec{}, fmt.Errorf("invalid %s: %w", r.name, err)
		}
		*r.dst = decimal.NewNullDecimal(d)
	}
	if raw := strings.TrimSpace(v.Get("sort")); raw != "" {
		k := SortKey(raw)
		if !k.Valid() {
			return Spec{}, fmt.Errorf("unknown sort key %q", raw)
		}
		s.Sort = k
	}
	if raw := strings.TrimSpace(v.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Spec{}, fmt.Errorf("invalid page %q", raw)
		}
		s.Page = n
	}
	return s, nil
}
