package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	redisdb "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/pkg/apperror"
	"github.com/your-org/storefront/internal/pkg/logger"
)

const catalogJSON = `[
	{"sku": "A", "title": "Lamp", "price": "10.00", "image_url": "a.jpg", "is_prime": true, "availability": "In Stock"},
	{"sku": "B", "title": "Mug", "price": "5.00"},
	{"sku": "X", "title": "Gone", "price": "1.00", "availability": "Currently unavailable"}
]`

func setupService(t *testing.T) (*Service, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redisdb.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })

	catalog, err := product.NewSeedCatalogFromJSON([]byte(catalogJSON))
	require.NoError(t, err)

	cfg := &config.Config{Session: config.SessionConfig{TTL: 2 * time.Hour}}
	return NewService(client, catalog, cfg, logger.Discard()), mr
}

func TestService_GetEmpty(t *testing.T) {
	s, _ := setupService(t)

	cart, err := s.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", cart.SessionID)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
}

func TestService_GetRequiresSession(t *testing.T) {
	s, _ := setupService(t)

	_, err := s.Get(context.Background(), "")
	_, ok := apperror.IsValidation(err)
	assert.True(t, ok)
}

func TestService_AddSnapshotsCatalogData(t *testing.T) {
	s, mr := setupService(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "sess-1", &AddToCartRequest{SKU: "A", Quantity: 2})
	require.NoError(t, err)
	cart, err := s.Add(ctx, "sess-1", &AddToCartRequest{SKU: "A", Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	item := cart.Items[0]
	assert.Equal(t, "Lamp", item.DisplayName)
	assert.Equal(t, "a.jpg", item.ImageRef)
	assert.True(t, item.IsPrime)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(price("10.00")))

	assert.True(t, mr.Exists("cart:session:sess-1"))
	assert.Equal(t, 2*time.Hour, mr.TTL("cart:session:sess-1"))

	reloaded, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Items[0].Quantity)
}

func TestService_AddRejectsUnknownAndUnavailable(t *testing.T) {
	s, mr := setupService(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "sess-1", &AddToCartRequest{SKU: "nope", Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = s.Add(ctx, "sess-1", &AddToCartRequest{SKU: "X", Quantity: 1})
	_, ok := apperror.IsValidation(err)
	assert.True(t, ok)

	_, err = s.Add(ctx, "sess-1", &AddToCartRequest{SKU: "  "})
	_, ok = apperror.IsValidation(err)
	assert.True(t, ok)

	assert.False(t, mr.Exists("cart:session:sess-1"))
}

func TestService_UpdateRemoveClearCount(t *testing.T) {
	s, mr := setupService(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "sess-1", &AddToCartRequest{SKU: "A", Quantity: 1})
	require.NoError(t, err)
	_, err = s.Add(ctx, "sess-1", &AddToCartRequest{SKU: "B", Quantity: 2})
	require.NoError(t, err)

	cart, err := s.UpdateQuantity(ctx, "sess-1", "A", &UpdateCartItemRequest{Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	_, err = s.UpdateQuantity(ctx, "sess-1", "missing", &UpdateCartItemRequest{Quantity: 3})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	n, err := s.Count(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cart, err = s.Remove(ctx, "sess-1", "B")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	_, err = s.Remove(ctx, "sess-1", "B")
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, "sess-1"))
	assert.False(t, mr.Exists("cart:session:sess-1"))

	n, err = s.Count(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestService_SessionsAreIsolated(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "sess-1", &AddToCartRequest{SKU: "A", Quantity: 1})
	require.NoError(t, err)

	other, err := s.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}
