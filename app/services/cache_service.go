package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how stale a query cache entry may get when a writer
// crashes between commit and invalidation.
const DefaultCacheTTL = time.Hour

// Cache is the advisory read cache in front of the store. Losing it must
// never lose correctness, only performance, so callers treat every error as
// a miss. Writers delete (never update) affected keys after the store
// transaction commits.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelPattern(ctx context.Context, prefix string) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// DelPattern removes every key starting with the prefix via SCAN, so a bulk
// write can drop a whole family of list caches without tracking each key.
func (c *RedisCache) DelPattern(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", prefix, err)
	}
	return c.Del(ctx, keys...)
}

// Cache key builders. Keys are built deterministically from the query
// parameters so the same request always maps to the same entry.

func CacheKeyUser(email string) string          { return "user_" + email }
func CacheKeyUserFavourite(id string) string    { return "favourite_" + id }
func CacheKeyCategories() string                { return "categories" }
func CacheKeyItem(id string) string             { return "item_" + id }
func CacheKeyCurrentOrder(userID string) string { return "order_current_" + userID }
func CacheKeyOrder(id string) string            { return "order_" + id }

func CacheKeyItemList(page, pageSize int, search, priceMin, priceMax, sortBy, sortOrder string, categories []string, showRemoved bool) string {
	return fmt.Sprintf("item_list_%d_%d_%s_%s_%s_%s_%s_%s_%t",
		page, pageSize, search, priceMin, priceMax, sortBy, sortOrder,
		strings.Join(categories, ","), showRemoved)
}

func CacheKeyOrderList(userID string, page, pageSize int, sortBy, sortOrder string) string {
	return fmt.Sprintf("order_list_%s_%d_%d_%s_%s", userID, page, pageSize, sortBy, sortOrder)
}

func CacheKeyRegions() string                  { return "post_regions" }
func CacheKeySettlements(regionID uint) string { return fmt.Sprintf("post_settlements_%d", regionID) }
func CacheKeyOffices(settlementID uint) string { return fmt.Sprintf("post_offices_%d", settlementID) }

const (
	CacheItemListPrefix  = "item_list_"
	CacheOrderListPrefix = "order_list_"
	CacheFavouritePrefix = "favourite_"
	CachePostPrefix      = "post_"
)
