package listing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	catalog "github.com/nazeru/storefront-orders-go/internal/catalog/domain"
	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/pkg/query"
)

func orderIDs(orders []domain.Order) []domain.OrderID {
	out := make([]domain.OrderID, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func TestOrders_TextMatchesCounterpart(t *testing.T) {
	orders := []domain.Order{
		{ID: "000000000000aaaa1111", Status: domain.StatusPaid, Store: domain.Party{DisplayName: "Scarf House"}, Customer: domain.Party{DisplayName: "Reza", Phone: "0912555"}},
		{ID: "000000000000bbbb2222", Status: domain.StatusShipped, TrackingNumber: "IR99887766", Store: domain.Party{DisplayName: "Cap Corner"}, Customer: domain.Party{DisplayName: "Sara"}},
	}

	spec := query.NewSpec(12).WithText("scarf")
	assert.Equal(t, []domain.OrderID{"000000000000aaaa1111"}, orderIDs(query.Filter(orders, spec, Orders(ViewerCustomer))))
	assert.Empty(t, query.Filter(orders, spec, Orders(ViewerStore)))

	spec = query.NewSpec(12).WithText("0912")
	assert.Equal(t, []domain.OrderID{"000000000000aaaa1111"}, orderIDs(query.Filter(orders, spec, Orders(ViewerStore))))

	spec = query.NewSpec(12).WithText("ir9988")
	assert.Len(t, query.Filter(orders, spec, Orders(ViewerCustomer)), 1)

	spec = query.NewSpec(12).WithText("bb2222")
	assert.Equal(t, []domain.OrderID{"000000000000bbbb2222"}, orderIDs(query.Filter(orders, spec, Orders(ViewerStore))))
}

func TestOrders_StatusFilterAndNewest(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{ID: "1", Status: domain.StatusPending, CreatedAt: base},
		{ID: "2", Status: domain.StatusPaid, CreatedAt: base.Add(time.Hour)},
		{ID: "3", Status: domain.StatusPending, CreatedAt: base.Add(2 * time.Hour)},
	}
	spec := query.NewSpec(12).WithCategory(string(domain.StatusPending))
	res := query.Run(orders, spec, Orders(ViewerStore))
	assert.Equal(t, []domain.OrderID{"3", "1"}, orderIDs(res.Items))
}

func TestProducts_CatalogQuery(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Title: "Wool scarf", Category: "women", Price: decimal.NewFromInt(300), ViewCount: 10, SalesCount: 1},
		{ID: "p2", Title: "Cap", Description: "cotton", Category: "men", Price: decimal.NewFromInt(100), ViewCount: 90, SalesCount: 3},
		{ID: "p3", Title: "Gloves", Category: "kids", Price: decimal.NewFromInt(50), SalesCount: 7},
	}

	res := query.Run(products, query.NewSpec(12).WithSort(query.SortPopular), Products)
	assert.Equal(t, catalog.ProductID("p2"), res.Items[0].ID)

	res = query.Run(products, query.NewSpec(12).WithSort(query.SortBestSelling), Products)
	assert.Equal(t, catalog.ProductID("p3"), res.Items[0].ID)

	spec := query.NewSpec(12).WithRange(decimal.NewNullDecimal(decimal.NewFromInt(60)), decimal.NewNullDecimal(decimal.NewFromInt(300)))
	res = query.Run(products, spec.WithSort(query.SortPriceLow), Products)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, catalog.ProductID("p2"), res.Items[0].ID)

	res = query.Run(products, query.NewSpec(12).WithText("COTTON"), Products)
	assert.Len(t, res.Items, 1)
}
