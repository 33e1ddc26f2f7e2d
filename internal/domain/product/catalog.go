package product

import (
	"context"
	"errors"

	"github.com/your-org/storefront/internal/pkg/apperror"
)

// Catalog is the read-only product source the rest of the application depends on
type Catalog interface {
	GetProduct(ctx context.Context, sku string) (*Product, error)
}

// Index enumerates every product available for browsing
type Index interface {
	All(ctx context.Context) ([]Product, error)
}

// chain asks primary first and falls back to secondary
type chain struct {
	primary   Catalog
	secondary Catalog
}

// Chain returns a catalog that consults secondary whenever primary fails.
// If both fail, primary's error wins.
func Chain(primary, secondary Catalog) Catalog {
	return &chain{primary: primary, secondary: secondary}
}

func (c *chain) GetProduct(ctx context.Context, sku string) (*Product, error) {
	p, err := c.primary.GetProduct(ctx, sku)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if fallback, ferr := c.secondary.GetProduct(ctx, sku); ferr == nil {
		return fallback, nil
	}
	return nil, err
}

func notFound(sku string) error {
	return apperror.NotFound("product", sku)
}
