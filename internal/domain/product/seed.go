package product

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed seed_catalog.json
var seedCatalogJSON []byte

// SeedCatalog is the bundled catalog used for browsing and as a lookup fallback
type SeedCatalog struct {
	products []Product
	bySKU    map[string]int
}

// NewSeedCatalog loads the embedded catalog
func NewSeedCatalog() (*SeedCatalog, error) {
	return NewSeedCatalogFromJSON(seedCatalogJSON)
}

// NewSeedCatalogFromJSON builds a catalog from a JSON array of products.
// Invalid or duplicate records fail the load.
func NewSeedCatalogFromJSON(data []byte) (*SeedCatalog, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalog: %w", err)
	}

	c := &SeedCatalog{
		products: products,
		bySKU:    make(map[string]int, len(products)),
	}
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed catalog entry %d: %w", i, err)
		}
		if _, dup := c.bySKU[products[i].SKU]; dup {
			return nil, fmt.Errorf("seed catalog has duplicate sku %s", products[i].SKU)
		}
		c.bySKU[products[i].SKU] = i
	}
	return c, nil
}

// GetProduct returns a copy of the product with the given sku
func (c *SeedCatalog) GetProduct(_ context.Context, sku string) (*Product, error) {
	i, ok := c.bySKU[sku]
	if !ok {
		return nil, notFound(sku)
	}
	p := c.products[i]
	return &p, nil
}

// All returns every product in catalog order
func (c *SeedCatalog) All(_ context.Context) ([]Product, error) {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out, nil
}
