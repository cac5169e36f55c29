// Package cache holds the short-lived Redis cache for resolved campaign
// prices. A cache failure is never fatal; callers fall through to the
// campaign repository.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ErFjeldheim/haugalandsved/internal/domain"
)

const priceKey = "campaign:price"

// ErrMiss is returned when no cached price pair is present.
var ErrMiss = redis.Nil

// PriceCache caches the resolved campaign price pair.
type PriceCache interface {
	// Get returns the cached price pair or ErrMiss.
	Get(ctx context.Context) (domain.PricePair, error)

	// Set stores the price pair for the cache TTL.
	Set(ctx context.Context, prices domain.PricePair) error
}

// RedisPriceCache implements PriceCache on Redis.
type RedisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPriceCache creates a price cache with the given TTL.
func NewRedisPriceCache(client *redis.Client, ttl time.Duration) *RedisPriceCache {
	return &RedisPriceCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached price pair or ErrMiss.
func (c *RedisPriceCache) Get(ctx context.Context) (domain.PricePair, error) {
	data, err := c.client.Get(ctx, priceKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.PricePair{}, ErrMiss
		}
		return domain.PricePair{}, fmt.Errorf("redis get price: %w", err)
	}

	var prices domain.PricePair
	if err := json.Unmarshal(data, &prices); err != nil {
		return domain.PricePair{}, fmt.Errorf("unmarshal cached price: %w", err)
	}
	return prices, nil
}

// Set stores the price pair for the cache TTL.
func (c *RedisPriceCache) Set(ctx context.Context, prices domain.PricePair) error {
	data, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("marshal price: %w", err)
	}
	if err := c.client.Set(ctx, priceKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set price: %w", err)
	}
	return nil
}
