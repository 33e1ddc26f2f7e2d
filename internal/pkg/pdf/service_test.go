package pdf

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
)

func testService() *Service {
	return NewService(&config.Config{
		Pricing: config.PricingConfig{Currency: "USD"},
		Company: config.CompanyConfig{Name: "Storefront Inc.", Email: "support@example.com"},
	})
}

func testOrder() *order.Order {
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &order.Order{
		OrderNumber: "ORD-20250601-ABCDEF12",
		Items: []order.LineItem{
			{SKU: "A", Name: "Lamp & Shade", UnitPrice: decimal.RequireFromString("10"), Quantity: 2},
		},
		Subtotal:      decimal.RequireFromString("20"),
		ShippingFee:   decimal.RequireFromString("9.99"),
		TaxAmount:     decimal.RequireFromString("1.6"),
		Total:         decimal.RequireFromString("31.59"),
		PaymentMethod: order.PaymentMethodCard,
		Status:        order.OrderStatusProcessing,
		Shipping: order.ShippingAddress{
			FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
			Address: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US",
		},
		CreatedAt: created,
	}
}

func TestGenerateHTML(t *testing.T) {
	s := testService()

	html, err := s.generateHTML(s.invoiceData(testOrder()))
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "INV-ORD-20250601-ABCDEF12")
	assert.Contains(t, out, "June 1, 2025")
	assert.Contains(t, out, "Lamp &amp; Shade")
	assert.Contains(t, out, "$10.00")
	assert.Contains(t, out, "$20.00")
	assert.Contains(t, out, "$9.99")
	assert.Contains(t, out, "$1.60")
	assert.Contains(t, out, "$31.59")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Total (USD)")
}

func TestInvoiceData_FreeShipping(t *testing.T) {
	o := testOrder()
	o.ShippingFee = decimal.Zero

	assert.Equal(t, "FREE", testService().invoiceData(o).Shipping)
}

func TestRenderInvoice(t *testing.T) {
	s := testService()
	var seen []byte
	s.convert = func(html []byte) ([]byte, error) {
		seen = html
		return []byte("%PDF-1.4"), nil
	}

	pdf, err := s.RenderInvoice(testOrder())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
	assert.Contains(t, string(seen), "ORD-20250601-ABCDEF12")

	s.convert = func([]byte) ([]byte, error) { return nil, errors.New("wkhtmltopdf not found") }
	_, err = s.RenderInvoice(testOrder())
	assert.Error(t, err)
}
