package cache

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/entity"
)

// newTestClient connects to the Redis named by REDIS_ADDR, skipping otherwise.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "product:P1", productKey("P1"))
	assert.Equal(t, "idempotent-key:abc", idempotencyKey("abc"))
}

func TestRedisCartStore(t *testing.T) {
	ctx := context.Background()
	s := NewRedisCartStore(newTestClient(t))

	data, err := s.Load(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.Save(ctx, "cart:s1", []byte(`[]`)))
	data, err = s.Load(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)

	require.NoError(t, s.Delete(ctx, "cart:s1"))
	data, err = s.Load(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestProductCache(t *testing.T) {
	ctx := context.Background()
	c := NewProductCache(newTestClient(t))

	_, ok, err := c.Get(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, &entity.Product{ID: "P1", Name: "Poster", Price: decimal.RequireFromString("399.99"), Stock: 3}))
	p, ok, err := c.Get(ctx, "P1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Poster", p.Name)
	assert.True(t, decimal.RequireFromString("399.99").Equal(p.Price))

	require.NoError(t, c.Invalidate(ctx, "P1", "P2"))
	_, ok, err = c.Get(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()
	g := NewIdempotencyGuard(newTestClient(t))

	ok, err := g.Claim(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, "k1"))
	ok, err = g.Claim(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
}
