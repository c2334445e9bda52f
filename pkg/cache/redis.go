// Package cache keeps product snapshots in Redis for the read path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"inventoryflow/pkg/inventory"
)

const keyPrefix = "inventoryflow:product:"

// Redis stores products as JSON strings with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a product cache on client. Entries expire after ttl.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// GetProduct returns the cached product and whether it was present.
func (r *Redis) GetProduct(ctx context.Context, id int64) (inventory.Product, bool, error) {
	b, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return inventory.Product{}, false, nil
	}
	if err != nil {
		return inventory.Product{}, false, fmt.Errorf("redis get: %w", err)
	}
	var p inventory.Product
	if err := json.Unmarshal(b, &p); err != nil {
		return inventory.Product{}, false, fmt.Errorf("decode cached product: %w", err)
	}
	return p, true, nil
}

// SetProduct caches p.
func (r *Redis) SetProduct(ctx context.Context, p inventory.Product) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	if err := r.client.Set(ctx, key(p.ID), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeleteProduct evicts the product.
func (r *Redis) DeleteProduct(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
