package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
)

// Pricing holds the tax and shipping policy applied to every cart
type Pricing struct {
	TaxRate               decimal.Decimal
	FlatShippingFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// DefaultPricing is 8% tax with 9.99 shipping, free above 100
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.08"),
		FlatShippingFee:       decimal.RequireFromString("9.99"),
		FreeShippingThreshold: decimal.NewFromInt(100),
	}
}

// NewPricing reads the pricing policy from configuration
func NewPricing(cfg *config.Config) Pricing {
	return Pricing{
		TaxRate:               cfg.Pricing.TaxRate,
		FlatShippingFee:       cfg.Pricing.FlatShippingFee,
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
	}
}

// Summary is the priced breakdown of a cart
type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// ShippingFee is free strictly above the threshold and flat otherwise
func (p Pricing) ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}

// Summarize derives shipping, tax and total from an exact subtotal
func (p Pricing) Summarize(subtotal decimal.Decimal) Summary {
	shipping := p.ShippingFee(subtotal)
	tax := subtotal.Mul(p.TaxRate)
	return Summary{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		TaxAmount:   tax,
		Total:       subtotal.Add(shipping).Add(tax),
	}
}

// ForItems prices a list of cart lines
func (p Pricing) ForItems(items []cart.LineItem) Summary {
	store := cart.NewStore(items...)
	s := p.Summarize(store.Subtotal())
	s.ItemCount = store.TotalQuantity()
	return s
}

// Rounded returns the summary with every amount rounded to cents
func (s Summary) Rounded() Summary {
	return Summary{
		Subtotal:    s.Subtotal.Round(2),
		ShippingFee: s.ShippingFee.Round(2),
		TaxAmount:   s.TaxAmount.Round(2),
		Total:       s.Total.Round(2),
		ItemCount:   s.ItemCount,
	}
}
