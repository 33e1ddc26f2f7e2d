package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/apperror"
)

// CartAdder adds a sku to a session cart
type CartAdder interface {
	Add(ctx context.Context, sessionID string, req *cart.AddToCartRequest) (*cart.SessionCart, error)
}

// Service handles wishlist business logic
type Service struct {
	repo    Repository
	catalog product.Catalog
	carts   CartAdder
	log     *logrus.Logger
}

// NewService creates a new wishlist service
func NewService(repo Repository, catalog product.Catalog, carts CartAdder, log *logrus.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		carts:   carts,
		log:     log,
	}
}

// SaveRequest represents a save-for-later request
type SaveRequest struct {
	SKU string `json:"sku" binding:"required"`
}

// Save adds sku to the user's saved set; saving twice keeps one entry
func (s *Service) Save(ctx context.Context, userID, sku string) error {
	if userID == "" {
		return apperror.ErrNotAuthenticated
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return apperror.NewValidationError("sku is required", "sku")
	}

	if _, err := s.catalog.GetProduct(ctx, sku); err != nil {
		return err
	}

	if err := s.repo.AddSaved(ctx, userID, sku); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "sku": sku}).Debug("Saved for later")
	return nil
}

// List resolves the saved skus in save order. Skus the catalog no longer
// knows are skipped.
func (s *Service) List(ctx context.Context, userID string) ([]Item, error) {
	if userID == "" {
		return nil, apperror.ErrNotAuthenticated
	}

	skus, err := s.repo.ListSaved(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(skus))
	for _, sku := range skus {
		p, err := s.catalog.GetProduct(ctx, sku)
		if errors.Is(err, apperror.ErrNotFound) {
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("sku", sku).Warn("Failed to resolve saved product")
			continue
		}
		items = append(items, Item{Product: p, IsAvailable: p.IsAvailable()})
	}
	return items, nil
}

// Remove drops sku from the saved set; removing an absent sku succeeds
func (s *Service) Remove(ctx context.Context, userID, sku string) error {
	if userID == "" {
		return apperror.ErrNotAuthenticated
	}
	return s.repo.RemoveSaved(ctx, userID, strings.TrimSpace(sku))
}

// MoveToCart adds a saved sku to the session cart and then unsaves it
func (s *Service) MoveToCart(ctx context.Context, userID, sessionID, sku string) (*cart.SessionCart, error) {
	if userID == "" {
		return nil, apperror.ErrNotAuthenticated
	}
	sku = strings.TrimSpace(sku)

	saved, err := s.repo.ListSaved(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !contains(saved, sku) {
		return nil, apperror.NotFound("saved item", sku)
	}

	c, err := s.carts.Add(ctx, sessionID, &cart.AddToCartRequest{SKU: sku, Quantity: 1})
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveSaved(ctx, userID, sku); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "sku": sku}).
			Warn("Moved to cart but failed to unsave")
	}
	return c, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
