package product

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redisdb "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/pkg/apperror"
	"github.com/your-org/storefront/internal/pkg/logger"
)

func setupCache(t *testing.T, next Catalog) (*CachedCatalog, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redisdb.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })
	return NewCachedCatalog(next, client, time.Hour, logger.Discard()), mr
}

func TestCachedCatalog_ReadThrough(t *testing.T) {
	stub := &stubCatalog{products: map[string]Product{
		"A": {SKU: "A", Title: "Lamp", Price: decimal.RequireFromString("19.99")},
	}}
	c, mr := setupCache(t, stub)
	ctx := context.Background()

	p, err := c.GetProduct(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Title)
	assert.True(t, mr.Exists("product:A"))
	assert.Equal(t, time.Hour, mr.TTL("product:A"))

	p, err = c.GetProduct(ctx, "A")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 1, stub.calls)

	mr.FastForward(time.Hour + time.Second)
	_, err = c.GetProduct(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestCachedCatalog_MissesAreNotCached(t *testing.T) {
	stub := &stubCatalog{}
	c, mr := setupCache(t, stub)

	_, err := c.GetProduct(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.False(t, mr.Exists("product:NOPE"))
}

func TestCachedCatalog_CorruptEntryFallsThrough(t *testing.T) {
	stub := &stubCatalog{products: map[string]Product{"A": {SKU: "A", Title: "Lamp"}}}
	c, mr := setupCache(t, stub)
	require.NoError(t, mr.Set("product:A", "{broken"))

	p, err := c.GetProduct(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Title)
	assert.Equal(t, 1, stub.calls)
}

// slowCatalog blocks until released so concurrent misses overlap
type slowCatalog struct {
	release chan struct{}
	calls   atomic.Int32
}

func (s *slowCatalog) GetProduct(_ context.Context, sku string) (*Product, error) {
	s.calls.Add(1)
	<-s.release
	return &Product{SKU: sku, Title: "Slow"}, nil
}

func TestCachedCatalog_CollapsesConcurrentMisses(t *testing.T) {
	slow := &slowCatalog{release: make(chan struct{})}
	c, _ := setupCache(t, slow)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.GetProduct(context.Background(), "A")
			assert.NoError(t, err)
			assert.Equal(t, "Slow", p.Title)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(slow.release)
	wg.Wait()

	assert.Equal(t, int32(1), slow.calls.Load())
}
