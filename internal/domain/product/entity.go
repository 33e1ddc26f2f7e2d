// internal/domain/product/entity.go
package product

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the typed product record shared by every catalog source.
// SKU is the upstream ASIN.
type Product struct {
	SKU          string          `json:"sku"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url"`
	Images       []string        `json:"images,omitempty"`
	Rating       float64         `json:"rating"`
	NumRatings   int             `json:"num_ratings"`
	Category     string          `json:"category,omitempty"`
	IsPrime      bool            `json:"is_prime"`
	Availability string          `json:"availability,omitempty"`
	About        []string        `json:"about,omitempty"`
	Featured     bool            `json:"featured,omitempty"`
}

// Category summarizes one browsing category
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
}

// Validate rejects records that cannot be sold
func (p *Product) Validate() error {
	if strings.TrimSpace(p.SKU) == "" {
		return fmt.Errorf("product has no sku")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("product %s has no title", p.SKU)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s has a negative price", p.SKU)
	}
	return nil
}

// IsAvailable reports whether the product can currently be ordered
func (p *Product) IsAvailable() bool {
	a := strings.ToLower(p.Availability)
	return !strings.Contains(a, "unavailable") && !strings.Contains(a, "out of stock")
}

// ParsePrice converts upstream price text such as "$1,299.99" into a decimal
func ParsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "", "USD", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid price %q: negative", raw)
	}
	return d, nil
}
