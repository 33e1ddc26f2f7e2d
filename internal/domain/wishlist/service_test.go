package wishlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/apperror"
	"github.com/your-org/storefront/internal/pkg/logger"
)

type memRepo struct {
	saved map[string][]string
}

func (m *memRepo) AddSaved(_ context.Context, userID, sku string) error {
	if _, ok := m.saved[userID]; !ok {
		return apperror.NotFound("user", userID)
	}
	if !contains(m.saved[userID], sku) {
		m.saved[userID] = append(m.saved[userID], sku)
	}
	return nil
}

func (m *memRepo) ListSaved(_ context.Context, userID string) ([]string, error) {
	skus, ok := m.saved[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	return append([]string(nil), skus...), nil
}

func (m *memRepo) RemoveSaved(_ context.Context, userID, sku string) error {
	out := m.saved[userID][:0]
	for _, s := range m.saved[userID] {
		if s != sku {
			out = append(out, s)
		}
	}
	m.saved[userID] = out
	return nil
}

type fakeCarts struct {
	added []string
	err   error
}

func (f *fakeCarts) Add(_ context.Context, sessionID string, req *cart.AddToCartRequest) (*cart.SessionCart, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, req.SKU)
	return &cart.SessionCart{SessionID: sessionID, Items: []cart.LineItem{{SKU: req.SKU, Quantity: req.Quantity}}}, nil
}

func setup(t *testing.T) (*Service, *memRepo, *fakeCarts) {
	catalog, err := product.NewSeedCatalogFromJSON([]byte(`[
		{"sku": "A", "title": "Lamp", "price": "10"},
		{"sku": "B", "title": "Mug", "price": "5", "availability": "Out of Stock"}
	]`))
	require.NoError(t, err)

	repo := &memRepo{saved: map[string][]string{"u1": {}}}
	carts := &fakeCarts{}
	return NewService(repo, catalog, carts, logger.Discard()), repo, carts
}

func TestSave_SetSemantics(t *testing.T) {
	s, repo, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "u1", "A"))
	require.NoError(t, s.Save(ctx, "u1", " A "))
	require.NoError(t, s.Save(ctx, "u1", "B"))
	assert.Equal(t, []string{"A", "B"}, repo.saved["u1"])
}

func TestSave_Errors(t *testing.T) {
	s, _, _ := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Save(ctx, "", "A"), apperror.ErrNotAuthenticated)
	assert.ErrorIs(t, s.Save(ctx, "u1", "ZZZ"), apperror.ErrNotFound)
	assert.ErrorIs(t, s.Save(ctx, "ghost", "A"), apperror.ErrNotFound)

	_, ok := apperror.IsValidation(s.Save(ctx, "u1", ""))
	assert.True(t, ok)
}

func TestList_SkipsUnknownSKUs(t *testing.T) {
	s, repo, _ := setup(t)
	repo.saved["u1"] = []string{"B", "RETIRED", "A"}

	items, err := s.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].Product.SKU)
	assert.False(t, items[0].IsAvailable)
	assert.Equal(t, "A", items[1].Product.SKU)
	assert.True(t, items[1].IsAvailable)
}

func TestRemove_Idempotent(t *testing.T) {
	s, repo, _ := setup(t)
	ctx := context.Background()
	repo.saved["u1"] = []string{"A", "B"}

	require.NoError(t, s.Remove(ctx, "u1", "A"))
	require.NoError(t, s.Remove(ctx, "u1", "A"))
	assert.Equal(t, []string{"B"}, repo.saved["u1"])
}

func TestMoveToCart(t *testing.T) {
	s, repo, carts := setup(t)
	ctx := context.Background()
	repo.saved["u1"] = []string{"A", "B"}

	c, err := s.MoveToCart(ctx, "u1", "sess", "A")
	require.NoError(t, err)
	assert.Equal(t, "sess", c.SessionID)
	assert.Equal(t, []string{"A"}, carts.added)
	assert.Equal(t, []string{"B"}, repo.saved["u1"])

	_, err = s.MoveToCart(ctx, "u1", "sess", "A")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMoveToCart_CartFailureKeepsSaved(t *testing.T) {
	s, repo, carts := setup(t)
	repo.saved["u1"] = []string{"B"}
	carts.err = apperror.NewValidationError("Mug is currently unavailable", "sku")

	_, err := s.MoveToCart(context.Background(), "u1", "sess", "B")
	_, ok := apperror.IsValidation(err)
	assert.True(t, ok)
	assert.Equal(t, []string{"B"}, repo.saved["u1"])
}
