package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	redisdb "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"golang.org/x/sync/singleflight"
)

// CachedCatalog is a Redis read-through cache in front of another catalog
type CachedCatalog struct {
	next  Catalog
	redis *redisdb.Client
	ttl   time.Duration
	log   *logrus.Logger
	sfg   singleflight.Group
}

// NewCachedCatalog wraps next with a cache of the given TTL
func NewCachedCatalog(next Catalog, client *redisdb.Client, ttl time.Duration, log *logrus.Logger) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		redis: client,
		ttl:   ttl,
		log:   log,
	}
}

// GetProduct serves sku from the cache, loading it from the wrapped catalog on a miss
func (c *CachedCatalog) GetProduct(ctx context.Context, sku string) (*Product, error) {
	key := cacheKey(sku)

	var cached Product
	err := c.redis.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, redisdb.ErrMiss) {
		c.log.WithError(err).WithField("sku", sku).Warn("Product cache read failed")
	}

	// Concurrent misses for one sku share a single upstream call
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		p, err := c.next.GetProduct(ctx, sku)
		if err != nil {
			return nil, err
		}
		if err := c.redis.SetJSON(ctx, key, p, c.ttl); err != nil {
			c.log.WithError(err).WithField("sku", sku).Warn("Product cache write failed")
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	p := *v.(*Product)
	return &p, nil
}

func cacheKey(sku string) string {
	return fmt.Sprintf("product:%s", sku)
}
