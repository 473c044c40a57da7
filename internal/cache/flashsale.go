// Package cache provides an optional, TTL-bounded Redis cache for flash-sale
// availability reads. It is always passed explicitly; services treat a nil
// cache as "caching disabled" and read straight from the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
)

// FlashSaleCache caches flash-sale snapshots in Redis under a short TTL.
// Snapshots can lag the database by up to the TTL; mutating paths must not
// read through here.
type FlashSaleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFlashSaleCache creates a FlashSaleCache with the given client and TTL.
func NewFlashSaleCache(client *redis.Client, ttl time.Duration) *FlashSaleCache {
	return &FlashSaleCache{client: client, ttl: ttl}
}

func saleKey(id string) string {
	return "flash_sale:" + id
}

// Get returns the cached snapshot, or nil, nil on a cache miss.
func (c *FlashSaleCache) Get(ctx context.Context, id string) (*model.FlashSale, error) {
	data, err := c.client.Get(ctx, saleKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get sale %s: %w", id, err)
	}

	var sale model.FlashSale
	if err := json.Unmarshal(data, &sale); err != nil {
		return nil, fmt.Errorf("decode cached sale %s: %w", id, err)
	}
	return &sale, nil
}

// Set stores a snapshot under the configured TTL.
func (c *FlashSaleCache) Set(ctx context.Context, sale *model.FlashSale) error {
	data, err := json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("encode sale %s: %w", sale.ID, err)
	}
	if err := c.client.Set(ctx, saleKey(sale.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set sale %s: %w", sale.ID, err)
	}
	return nil
}

// Invalidate drops a snapshot after a write so readers do not serve a full
// TTL of staleness on top of the mutation.
func (c *FlashSaleCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, saleKey(id)).Err(); err != nil {
		return fmt.Errorf("cache invalidate sale %s: %w", id, err)
	}
	return nil
}
