// Package stats derives the summary cards shown above order lists.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/nazeru/storefront-orders-go/internal/order/domain"
)

type Summary struct {
	Total    int                   `json:"total"`
	ByStatus map[domain.Status]int `json:"by_status"`
	// TotalRevenue sums every order, cancelled and refunded included.
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	// FulfilledRevenue leaves cancelled and refunded orders out.
	FulfilledRevenue  decimal.Decimal `json:"fulfilled_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	Latest            *domain.Order   `json:"latest,omitempty"`
}

// Summarize walks orders once. An empty collection yields zero figures.
func Summarize(orders []domain.Order) Summary {
	s := Summary{
		ByStatus:          make(map[domain.Status]int, len(domain.Statuses)),
		TotalRevenue:      decimal.Zero,
		FulfilledRevenue:  decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	for _, st := range domain.Statuses {
		s.ByStatus[st] = 0
	}

	latest := -1
	for i, o := range orders {
		s.Total++
		s.ByStatus[o.Status]++
		s.TotalRevenue = s.TotalRevenue.Add(o.TotalAmount)
		if o.Status != domain.StatusCancelled && o.Status != domain.StatusRefunded {
			s.FulfilledRevenue = s.FulfilledRevenue.Add(o.TotalAmount)
		}
		if latest < 0 || o.CreatedAt.After(orders[latest].CreatedAt) {
			latest = i
		}
	}

	if s.Total > 0 {
		s.AverageOrderValue = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.Total)))
		o := orders[latest]
		s.Latest = &o
	}
	return s
}

// Count returns the number of orders in status st.
func (s Summary) Count(st domain.Status) int {
	return s.ByStatus[st]
}
