// Package cache backs carts, product reads and checkout idempotency keys
// with Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"os"
	"storefront-service/internal/entity"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	cartTTL        = 30 * 24 * time.Hour
	productTTL     = 10 * time.Minute
	idempotencyTTL = 24 * time.Hour
)

// RedisCartStore implements cart.Store.
type RedisCartStore struct {
	rdb *redis.Client
}

func NewRedisCartStore(rdb *redis.Client) *RedisCartStore {
	return &RedisCartStore{rdb: rdb}
}

func (s *RedisCartStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

// Save refreshes the TTL so an active cart is kept alive.
func (s *RedisCartStore) Save(ctx context.Context, key string, data []byte) error {
	return s.rdb.Set(ctx, key, data, cartTTL).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// ProductCache is a read-through cache of single products.
type ProductCache struct {
	rdb *redis.Client
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{rdb: rdb}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get reports false on a cache miss.
func (c *ProductCache) Get(ctx context.Context, id string) (*entity.Product, bool, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var p entity.Product
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Warn().Err(err).Msgf("Dropping unreadable cache entry for product %s", id)
		_ = c.rdb.Del(ctx, productKey(id)).Err()
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *ProductCache) Set(ctx context.Context, p *entity.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(p.ID), data, productTTL).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// IdempotencyGuard remembers checkout keys for a day.
type IdempotencyGuard struct {
	rdb *redis.Client
}

func NewIdempotencyGuard(rdb *redis.Client) *IdempotencyGuard {
	return &IdempotencyGuard{rdb: rdb}
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

// Claim reports false when the key was already claimed.
func (g *IdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.rdb.SetNX(ctx, idempotencyKey(key), "exists", idempotencyTTL).Result()
}

// Release frees a key whose checkout did not go through.
func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, idempotencyKey(key)).Err()
}
