// Package listing binds the generic query engine to storefront entities.
package listing

import (
	"time"

	"github.com/shopspring/decimal"

	catalog "github.com/nazeru/storefront-orders-go/internal/catalog/domain"
	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/pkg/query"
)

// Products searches title, description and category, filters on category
// and ranges/sorts on price.
var Products = query.Fields[catalog.Product]{
	Text: func(p catalog.Product) []string {
		return []string{p.Title, p.Description, p.Category}
	},
	Category: func(p catalog.Product) string { return p.Category },
	Amount:   func(p catalog.Product) decimal.Decimal { return p.Price },
	Created:  func(p catalog.Product) time.Time { return p.CreatedAt },
	Views:    func(p catalog.Product) int64 { return p.ViewCount },
	Sales:    func(p catalog.Product) int64 { return p.SalesCount },
}

// Viewer is the side of the order the listing is shown to.
type Viewer int

const (
	ViewerCustomer Viewer = iota
	ViewerStore
)

// Orders returns order field selectors for the given viewer. Free text
// matches the order code, the tracking number and the counterpart's name
// and phone: the store for customers, the customer for store staff.
func Orders(v Viewer) query.Fields[domain.Order] {
	counterpart := func(o domain.Order) domain.Party { return o.Store }
	if v == ViewerStore {
		counterpart = func(o domain.Order) domain.Party { return o.Customer }
	}
	return query.Fields[domain.Order]{
		Text: func(o domain.Order) []string {
			p := counterpart(o)
			fields := []string{o.Code(), o.TrackingNumber, p.DisplayName, p.Phone}
			if v == ViewerStore {
				fields = append(fields, o.ShippingAddress.RecipientName(), o.ShippingAddress.Phone)
			}
			return fields
		},
		Category: func(o domain.Order) string { return string(o.Status) },
		Amount:   func(o domain.Order) decimal.Decimal { return o.TotalAmount },
		Created:  func(o domain.Order) time.Time { return o.CreatedAt },
	}
}
