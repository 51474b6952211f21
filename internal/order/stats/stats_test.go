package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazeru/storefront-orders-go/internal/order/domain"
)

func order(id string, st domain.Status, total int64, created time.Time) domain.Order {
	return domain.Order{ID: domain.OrderID(id), Status: st, TotalAmount: decimal.NewFromInt(total), CreatedAt: created}
}

func TestSummarize_PendingAndPaid(t *testing.T) {
	now := time.Now()
	s := Summarize([]domain.Order{
		order("a", domain.StatusPending, 100, now),
		order("b", domain.StatusPaid, 200, now.Add(time.Minute)),
	})

	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Count(domain.StatusPending))
	assert.Equal(t, 1, s.Count(domain.StatusPaid))
	assert.Equal(t, 0, s.Count(domain.StatusRefunded))
	assert.True(t, decimal.NewFromInt(300).Equal(s.TotalRevenue))
	assert.True(t, decimal.NewFromInt(150).Equal(s.AverageOrderValue))
	require.NotNil(t, s.Latest)
	assert.Equal(t, domain.OrderID("b"), s.Latest.ID)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.True(t, s.TotalRevenue.IsZero())
	assert.True(t, s.AverageOrderValue.IsZero())
	assert.Nil(t, s.Latest)
	assert.Len(t, s.ByStatus, len(domain.Statuses))
}

func TestSummarize_RevenueIncludesCancelled(t *testing.T) {
	now := time.Now()
	s := Summarize([]domain.Order{
		order("a", domain.StatusDelivered, 100, now),
		order("b", domain.StatusCancelled, 50, now),
		order("c", domain.StatusRefunded, 25, now),
	})
	assert.True(t, decimal.NewFromInt(175).Equal(s.TotalRevenue))
	assert.True(t, decimal.NewFromInt(100).Equal(s.FulfilledRevenue))
}

func TestSummarize_LatestTieKeepsFirst(t *testing.T) {
	at := time.Date(2025, 2, 2, 12, 0, 0, 0, time.UTC)
	s := Summarize([]domain.Order{
		order("old", domain.StatusPaid, 1, at.Add(-time.Hour)),
		order("first", domain.StatusPaid, 1, at),
		order("second", domain.StatusPaid, 1, at),
	})
	require.NotNil(t, s.Latest)
	assert.Equal(t, domain.OrderID("first"), s.Latest.ID)
}

func TestSummarize_DoesNotAliasInput(t *testing.T) {
	orders := []domain.Order{order("a", domain.StatusPaid, 10, time.Now())}
	s := Summarize(orders)
	s.Latest.Status = domain.StatusRefunded
	assert.Equal(t, domain.StatusPaid, orders[0].Status)
}
