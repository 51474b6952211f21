package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCode(t *testing.T) {
	assert.Equal(t, "9F3A21BC", Order{ID: "64f1c2d39f3a21bc"}.Code())
	assert.Equal(t, "AB12", Order{ID: "ab12"}.Code())
}

func TestCustomerView(t *testing.T) {
	in := []Order{{ID: "a", InternalNote: "vip", TrackingNumber: "TRK-1"}, {ID: "b"}}
	out := CustomerView(in)
	require.Len(t, out, 2)
	assert.Empty(t, out[0].InternalNote)
	assert.Equal(t, "TRK-1", out[0].TrackingNumber)
	assert.Equal(t, "vip", in[0].InternalNote, "input is not modified")
}

func TestOrderSubtotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{UnitPrice: decimal.RequireFromString("120000"), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("9.5"), Quantity: 3},
	}}
	assert.True(t, decimal.RequireFromString("240028.5").Equal(o.Subtotal()))
}

func TestOrderValidate(t *testing.T) {
	now := time.Now()
	ok := Order{Status: StatusPaid, CreatedAt: now, UpdatedAt: now.Add(time.Minute), TotalAmount: decimal.NewFromInt(10)}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.TotalAmount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, bad.Validate(), ErrNegativeTotal)

	bad = ok
	bad.UpdatedAt = now.Add(-time.Hour)
	assert.ErrorIs(t, bad.Validate(), ErrUpdatedBeforeNew)

	bad = ok
	bad.Status = "lost"
	assert.ErrorIs(t, bad.Validate(), ErrUnknownStatus)

	bad = ok
	bad.Items = []OrderItem{{Quantity: 0}}
	assert.ErrorIs(t, bad.Validate(), ErrBadQuantity)
}

func TestOrderDecode_UpstreamShape(t *testing.T) {
	payload := `{
		"id": "64f1c2d39f3a21bc",
		"status": "processing",
		"created_at": "2025-03-01T10:00:00Z",
		"updated_at": "2025-03-02T10:00:00Z",
		"total_amount": "450000.00",
		"payment_method": "bank_transfer",
		"items": [{"product": {"id": "p1", "title": "Scarf", "sku": "SC-1", "stock": 0}, "price": 150000, "quantity": 3, "color": "red"}],
		"shipping_address": {"firstName": "Sara", "lastName": "Ahmadi", "address": "12 Vali-Asr", "note": "ring twice"},
		"store": {"id": "s1", "store_name": "Scarf House", "phone": "0912"},
		"user": {"id": "u1", "full_name": "Sara Ahmadi"}
	}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(payload), &o))

	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, PaymentBankTransfer, o.PaymentMethod)
	assert.True(t, decimal.NewFromInt(450000).Equal(o.TotalAmount))
	assert.Equal(t, "Scarf House", o.Store.DisplayName)
	assert.Equal(t, "Sara Ahmadi", o.Customer.DisplayName)
	assert.Equal(t, "Sara Ahmadi", o.ShippingAddress.RecipientName())
	require.Len(t, o.Items, 1)
	assert.False(t, o.Items[0].InStock())
	assert.True(t, decimal.NewFromInt(450000).Equal(o.Items[0].LineTotal()))
	assert.Equal(t, "Bank transfer", o.PaymentMethod.Label())
}
