// Package cache stores rendered recommendation responses in Redis, keyed by
// catalog version and a hash of the normalized request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

const (
	DefaultTTL = 10 * time.Minute
	keyPrefix  = "rec:"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Key derives the cache key for a request against a catalog version. The
// language and top_k must already be resolved so that equivalent requests
// share an entry.
func Key(version uint64, req domain.RecommendationRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request for cache key: %w", err)
	}
	return keyPrefix + "v" + strconv.FormatUint(version, 10) + ":" + strconv.FormatUint(xxhash.Sum64(raw), 16), nil
}

// Get a cached response. A miss returns found == false and no error.
func (c *Cache) Get(ctx context.Context, key string) (*domain.RecommendationResponse, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s from cache: %w", key, err)
	}

	var resp domain.RecommendationResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached response %s: %w", key, err)
	}
	return &resp, true, nil
}

// Store a rendered response
func (c *Cache) Set(ctx context.Context, key string, resp *domain.RecommendationResponse) error {
	val, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s in cache: %w", key, err)
	}
	return nil
}

// Clear drops every cached response. Used after a seller boost update; the
// version bump already makes old keys unreachable, this just frees memory.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
