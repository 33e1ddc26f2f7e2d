package wishlist

import (
	"context"

	"github.com/your-org/storefront/internal/domain/product"
)

// Item is a saved sku resolved against the catalog
type Item struct {
	Product     *product.Product `json:"product"`
	IsAvailable bool             `json:"is_available"`
}

// Repository stores the set of skus a user saved for later
type Repository interface {
	AddSaved(ctx context.Context, userID, sku string) error
	ListSaved(ctx context.Context, userID string) ([]string, error)
	RemoveSaved(ctx context.Context, userID, sku string) error
}
