// internal/domain/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CachedReader is a read-through Redis cache in front of another Reader.
// Only single product lookups are cached; listings always hit the source.
type CachedReader struct {
	source Reader
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
	sfg    singleflight.Group
}

// NewCachedReader wraps source with a product cache
func NewCachedReader(source Reader, client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *CachedReader {
	return &CachedReader{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedReader) ListProducts(ctx context.Context, filter Filter) ([]Product, error) {
	return c.source.ListProducts(ctx, filter)
}

// GetProduct serves from cache, collapsing concurrent misses for the same id.
// Cache errors are logged and never fail the lookup. The shared lookup is
// not tied to any one caller; each caller stops waiting when its own ctx ends.
func (c *CachedReader) GetProduct(ctx context.Context, id string) (Product, error) {
	lookupCtx := context.WithoutCancel(ctx)

	ch := c.sfg.DoChan(id, func() (interface{}, error) {
		return c.lookup(lookupCtx, id)
	})

	select {
	case <-ctx.Done():
		return Product{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Product{}, res.Err
		}
		return res.Val.(Product), nil
	}
}

func (c *CachedReader) lookup(ctx context.Context, id string) (Product, error) {
	product, err := c.getCached(ctx, id)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.WithError(err).WithField("product_id", id).Warn("catalog cache read failed")
	}

	product, err = c.source.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if err := c.setCached(ctx, product); err != nil {
		c.logger.WithError(err).WithField("product_id", id).Warn("catalog cache write failed")
	}
	return product, nil
}

func (c *CachedReader) getCached(ctx context.Context, id string) (Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return Product{}, err
	}

	var product Product
	if err := json.Unmarshal(data, &product); err != nil {
		return Product{}, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return product, nil
}

func (c *CachedReader) setCached(ctx context.Context, product Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err()
}

func productKey(id string) string {
	return fmt.Sprintf("catalog:product:%s", id)
}
