package query

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_WithResetsPage(t *testing.T) {
	s := NewSpec(12).WithPage(4)
	assert.Equal(t, 4, s.Page)

	assert.Equal(t, 1, s.WithText("x").Page)
	assert.Equal(t, 1, s.WithCategory("men").Page)
	assert.Equal(t, 1, s.WithSort(SortPopular).Page)
	assert.Equal(t, 1, s.WithRange(decimal.NullDecimal{}, decimal.NullDecimal{}).Page)
	assert.Equal(t, 4, s.Page, "receiver is never modified")
}

func TestSpecFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("q", " scarf ")
	v.Set("status", "shipped")
	v.Set("min", "10.5")
	v.Set("max", "200")
	v.Set("sort", "price-high")
	v.Set("page", "3")

	s, err := SpecFromValues(v, "status", 20)
	require.NoError(t, err)
	assert.Equal(t, "scarf", s.Text)
	assert.Equal(t, "shipped", s.Category)
	assert.True(t, s.Min.Valid)
	assert.True(t, decimal.RequireFromString("10.5").Equal(s.Min.Decimal))
	assert.True(t, decimal.NewFromInt(200).Equal(s.Max.Decimal))
	assert.Equal(t, SortPriceHigh, s.Sort)
	assert.Equal(t, 3, s.Page)
	assert.Equal(t, 20, s.PageSize)
}

func TestSpecFromValues_Defaults(t *testing.T) {
	s, err := SpecFromValues(url.Values{}, "category", 0)
	require.NoError(t, err)
	assert.Equal(t, NewSpec(DefaultPageSize), s)
}

func TestSpecFromValues_Rejects(t *testing.T) {
	for _, raw := range []string{"sort=cheapest", "page=0", "page=two", "min=abc"} {
		v, err := url.ParseQuery(raw)
		require.NoError(t, err)
		_, err = SpecFromValues(v, "category", 12)
		assert.Error(t, err, raw)
	}
}

func TestSpec_ValuesRoundTrip(t *testing.T) {
	s := NewSpec(12).WithText("cap").WithCategory("men").WithSort(SortBestSelling).WithPage(2)
	s = s.WithRange(decimal.NewNullDecimal(decimal.NewFromInt(5)), decimal.NullDecimal{}).WithPage(2)

	v := s.Values()
	assert.Equal(t, "best-selling", v.Get("sort"))
	assert.Empty(t, v.Get("max"))

	back, err := SpecFromValues(v, "category", 12)
	require.NoError(t, err)
	assert.Equal(t, s.Text, back.Text)
	assert.Equal(t, s.Category, back.Category)
	assert.Equal(t, s.Sort, back.Sort)
	assert.Equal(t, s.Page, back.Page)
	assert.True(t, s.Min.Decimal.Equal(back.Min.Decimal))
}
