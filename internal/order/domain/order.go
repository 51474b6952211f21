package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderID string
type ProductID string

type PaymentMethod string

const (
	PaymentOnline       PaymentMethod = "online"
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentOnline:
		return "Online payment"
	case PaymentCash:
		return "Cash on delivery"
	case PaymentBankTransfer:
		return "Bank transfer"
	case "":
		return "-"
	default:
		return string(m)
	}
}

// ProductRef is the product as it looked when the order was placed.
// It is never refreshed from the live catalog.
type ProductRef struct {
	ID        ProductID `json:"id"`
	Title     string    `json:"title"`
	SKU       string    `json:"sku,omitempty"`
	Stock     int       `json:"stock"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

type OrderItem struct {
	Product   ProductRef      `json:"product"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (it OrderItem) InStock() bool {
	return it.Product.Stock > 0
}

type ShippingAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Phone      string `json:"phone,omitempty"`
	// Note is written by the customer at checkout and is read-only afterwards.
	Note string `json:"note,omitempty"`
}

func (a ShippingAddress) RecipientName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Party is a reference summary of the store or the customer on an order.
type Party struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// UnmarshalJSON accepts the store (store_name) and customer (full_name)
// spellings the upstream API uses for the display name.
func (p *Party) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		StoreName string `json:"store_name"`
		FullName  string `json:"full_name"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID, p.Phone, p.Email = raw.ID, raw.Phone, raw.Email
	switch {
	case raw.Name != "":
		p.DisplayName = raw.Name
	case raw.StoreName != "":
		p.DisplayName = raw.StoreName
	default:
		p.DisplayName = raw.FullName
	}
	return nil
}

type Order struct {
	ID             OrderID         `json:"id"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	// InternalNote is visible to store staff only.
	InternalNote    string          `json:"admin_note,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Store           Party           `json:"store"`
	Customer        Party           `json:"user"`
}

// Code is the short human-facing order reference.
func (o Order) Code() string {
	id := string(o.ID)
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

// Subtotal sums the line totals of the captured item prices.
func (o Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func (o Order) HasTracking() bool {
	return strings.TrimSpace(o.TrackingNumber) != ""
}

// CustomerView returns copies of orders with staff-only fields cleared.
func CustomerView(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		o.InternalNote = ""
		out[i] = o
	}
	return out
}

var (
	ErrUnknownStatus    = errors.New("unknown order status")
	ErrNegativeTotal    = errors.New("total amount must be >= 0")
	ErrUpdatedBeforeNew = errors.New("updated_at precedes created_at")
	ErrBadQuantity      = errors.New("item quantity must be >= 1")
)

// Validate checks that an order snapshot is internally consistent.
func (o Order) Validate() error {
	if !o.Status.Valid() {
		return ErrUnknownStatus
	}
	if o.TotalAmount.IsNegative() {
		return ErrNegativeTotal
	}
	if !o.UpdatedAt.IsZero() && o.UpdatedAt.Before(o.CreatedAt) {
		return ErrUpdatedBeforeNew
	}
	for _, it := range o.Items {
		if it.Quantity < 1 {
			return ErrBadQuantity
		}
	}
	return nil
}
