package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventoryflow/pkg/inventory"
)

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("INVENTORYFLOW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INVENTORYFLOW_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	c := NewRedis(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	p := inventory.Product{ID: 424242, Name: "Widget", Category: "tools", Price: decimal.RequireFromString("3.10"), Stock: 9}
	require.NoError(t, c.DeleteProduct(ctx, p.ID))

	_, ok, err := c.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetProduct(ctx, p))
	got, ok, err := c.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Equal(t, 9, got.Stock)

	require.NoError(t, c.DeleteProduct(ctx, p.ID))
	_, ok, err = c.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "inventoryflow:product:17", key(17))
}
