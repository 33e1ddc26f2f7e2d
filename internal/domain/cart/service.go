// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	redisdb "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/pkg/apperror"
)

// Service persists one cart per shopper session in Redis
type Service struct {
	redis   *redisdb.Client
	catalog product.Catalog
	ttl     time.Duration
	log     *logrus.Logger
}

// NewService creates a new cart service
func NewService(client *redisdb.Client, catalog product.Catalog, cfg *config.Config, log *logrus.Logger) *Service {
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		redis:   client,
		catalog: catalog,
		ttl:     ttl,
		log:     log,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Quantity int    `json:"quantity"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// Get returns the session's cart, empty if none is stored
func (s *Service) Get(ctx context.Context, sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("session ID required for cart", "session_id")
	}

	var cart SessionCart
	err := s.redis.GetJSON(ctx, cartKey(sessionID), &cart)
	if errors.Is(err, redisdb.ErrMiss) {
		now := time.Now().UTC()
		return &SessionCart{
			SessionID: sessionID,
			Items:     []LineItem{},
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}, nil
	}
	if err != nil {
		return nil, apperror.Persistence("load cart", err)
	}
	if cart.Items == nil {
		cart.Items = []LineItem{}
	}
	return &cart, nil
}

// Add looks sku up in the catalog and adds it to the session's cart
func (s *Service) Add(ctx context.Context, sessionID string, req *AddToCartRequest) (*SessionCart, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, apperror.NewValidationError("sku is required", "sku")
	}

	p, err := s.catalog.GetProduct(ctx, sku)
	if err != nil {
		return nil, err
	}
	if !p.IsAvailable() {
		return nil, apperror.NewValidationError(fmt.Sprintf("%s is currently unavailable", p.Title), "sku")
	}

	return s.mutate(ctx, sessionID, func(store *Store) error {
		store.AddItem(p.SKU, req.Quantity, p.Price, Meta{
			DisplayName:  p.Title,
			ImageRef:     p.ImageURL,
			IsPrime:      p.IsPrime,
			Availability: p.Availability,
		})
		return nil
	})
}

// UpdateQuantity sets the quantity of a line already in the cart
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, sku string, req *UpdateCartItemRequest) (*SessionCart, error) {
	return s.mutate(ctx, sessionID, func(store *Store) error {
		if !store.SetQuantity(sku, req.Quantity) {
			return apperror.NotFound("cart item", sku)
		}
		return nil
	})
}

// Remove deletes sku from the cart; removing an absent sku succeeds
func (s *Service) Remove(ctx context.Context, sessionID, sku string) (*SessionCart, error) {
	return s.mutate(ctx, sessionID, func(store *Store) error {
		store.RemoveItem(sku)
		return nil
	})
}

// Clear drops the session's cart
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.redis.Del(ctx, cartKey(sessionID)); err != nil {
		return apperror.Persistence("clear cart", err)
	}
	s.log.WithField("session_id", sessionID).Debug("Cart cleared")
	return nil
}

// Count returns the total quantity in the cart
func (s *Service) Count(ctx context.Context, sessionID string) (int, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return cart.Store().TotalQuantity(), nil
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*Store) error) (*SessionCart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	store := cart.Store()
	if err := fn(store); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cart.Items = store.Items()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.ttl)

	if err := s.redis.SetJSON(ctx, cartKey(sessionID), cart, s.ttl); err != nil {
		return nil, apperror.Persistence("save cart", err)
	}
	return cart, nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}
