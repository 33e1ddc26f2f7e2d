// internal/domain/order/entity.go
package order

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Statuses lists every order status in lifecycle order
var Statuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// PaymentMethod is the payment option chosen at checkout
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// ParsePaymentMethod maps user input to a payment method, defaulting to card
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PaymentMethodCard:
		return PaymentMethodCard, nil
	case PaymentMethodPayPal:
		return PaymentMethodPayPal, nil
	default:
		return "", fmt.Errorf("unsupported payment method %q", raw)
	}
}

// Order is an immutable record of a completed purchase
type Order struct {
	OrderNumber       string          `json:"order_number"`
	Items             []LineItem      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingFee       decimal.Decimal `json:"shipping_fee"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
	Shipping          ShippingAddress `json:"shipping"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	Status            OrderStatus     `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
}

// LineItem is a snapshot of one purchased sku
type LineItem struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// LineTotal returns unit price times quantity
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ShippingAddress is where an order is delivered
type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// Missing returns the JSON names of every required field that is blank
func (a ShippingAddress) Missing() []string {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"email", a.Email},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"zip_code", a.ZipCode},
		{"country", a.Country},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Trimmed returns a copy with surrounding whitespace removed from every field
func (a ShippingAddress) Trimmed() ShippingAddress {
	return ShippingAddress{
		FirstName: strings.TrimSpace(a.FirstName),
		LastName:  strings.TrimSpace(a.LastName),
		Email:     strings.TrimSpace(a.Email),
		Phone:     strings.TrimSpace(a.Phone),
		Address:   strings.TrimSpace(a.Address),
		City:      strings.TrimSpace(a.City),
		State:     strings.TrimSpace(a.State),
		ZipCode:   strings.TrimSpace(a.ZipCode),
		Country:   strings.TrimSpace(a.Country),
	}
}

// FullName joins first and last name
func (a ShippingAddress) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NewOrderNumber generates an order number for an order placed at t.
// Format: ORD-YYYYMMDD-XXXXXXXX
func NewOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", t.UTC().Format("20060102"), suffix)
}

// ItemCount returns the total quantity across all lines
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		if n > math.MaxInt-it.Quantity {
			return math.MaxInt
		}
		n += it.Quantity
	}
	return n
}

// Repository persists orders on the owning user's record
type Repository interface {
	AppendOrder(ctx context.Context, userID string, o *Order) error
	ListOrders(ctx context.Context, userID string) ([]Order, error)
	FindOrderByNumber(ctx context.Context, userID, number string) (*Order, error)
}

// InvoiceRenderer produces a printable invoice for an order
type InvoiceRenderer interface {
	RenderInvoice(o *Order) ([]byte, error)
}
