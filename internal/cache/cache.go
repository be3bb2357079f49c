// Package cache holds the redis-backed product read cache and the
// idempotency marks used by background workers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ProductCache caches product detail reads.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.ProductDetail, bool)
	Set(ctx context.Context, detail *model.ProductDetail)
	Invalidate(ctx context.Context, id uuid.UUID)
}

// Marker claims a unit of work so it runs at most once.
type Marker interface {
	// Claim sets key unless it already exists. False means someone else
	// holds the claim.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claim whose work did not complete.
	Release(ctx context.Context, key string) error
}

// Ping checks a redis client, for readiness probes.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func productKey(id uuid.UUID) string {
	return "product:" + id.String()
}

type redisProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewProductCache creates a redis-backed product cache. Cache failures are
// logged and treated as misses.
func NewProductCache(client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) ProductCache {
	return &redisProductCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "product-cache").Logger(),
	}
}

func (c *redisProductCache) Get(ctx context.Context, id uuid.UUID) (*model.ProductDetail, bool) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product cache read failed")
		}
		return nil, false
	}

	var detail model.ProductDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		c.logger.Warn().Err(err).Str("product_id", id.String()).Msg("discarding corrupt cache entry")
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &detail, true
}

func (c *redisProductCache) Set(ctx context.Context, detail *model.ProductDetail) {
	data, err := json.Marshal(detail)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productKey(detail.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("product_id", detail.ID.String()).Msg("product cache write failed")
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product cache invalidation failed")
	}
}

type redisMarker struct {
	client redis.Cmdable
}

// NewMarker creates a redis-backed idempotency marker.
func NewMarker(client redis.Cmdable) Marker {
	return &redisMarker{client: client}
}

func (m *redisMarker) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := m.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (m *redisMarker) Release(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// Noop is a ProductCache that never hits, used when redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID) (*model.ProductDetail, bool) { return nil, false }
func (Noop) Set(context.Context, *model.ProductDetail)                    {}
func (Noop) Invalidate(context.Context, uuid.UUID)                        {}
