// Package cached decorates an inventory.Store with a product cache.
//
// Only AdjustStock writes snapshots into the cache, and the ledger calls it
// while holding the product's lock, so no older snapshot can land after a
// newer one. Every other path that touches a product evicts its entry, and a
// miss reads the store without filling. Stock decisions never read the cache:
// the store's guard decides every decrement.
package cached

import (
	"context"
	"errors"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/logger"
)

// Cache holds product snapshots.
type Cache interface {
	GetProduct(ctx context.Context, id int64) (inventory.Product, bool, error)
	SetProduct(ctx context.Context, p inventory.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// Store is an inventory.Store whose product reads go through a Cache.
// Cache failures are logged and the backing store is used directly.
type Store struct {
	inventory.Store
	cache Cache
	log   *logger.Logger
}

var _ inventory.Store = (*Store)(nil)

// New wraps next with cache.
func New(next inventory.Store, cache Cache, log *logger.Logger) *Store {
	return &Store{Store: next, cache: cache, log: log}
}

// GetProduct serves from the cache and falls back to the store on a miss.
// The miss path does not fill the cache: a snapshot read here could be
// overwritten by a stock change before it is stored.
func (s *Store) GetProduct(ctx context.Context, id int64) (inventory.Product, error) {
	p, ok, err := s.cache.GetProduct(ctx, id)
	if err != nil {
		s.log.Warn(ctx, "product cache read", "product_id", id, "error", err)
	}
	if ok {
		return p, nil
	}
	return s.Store.GetProduct(ctx, id)
}

// UpdateProduct updates the store and evicts the cache entry.
func (s *Store) UpdateProduct(ctx context.Context, id int64, patch inventory.ProductPatch) (inventory.Product, error) {
	p, err := s.Store.UpdateProduct(ctx, id, patch)
	s.evict(ctx, id)
	return p, err
}

// DeleteProduct deletes from the store and evicts the cache entry.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	err := s.Store.DeleteProduct(ctx, id)
	if err == nil || errors.Is(err, inventory.ErrNotFound) {
		s.evict(ctx, id)
	}
	return err
}

// AdjustStock changes stock in the store and caches the committed product.
// A refused or failed change evicts the entry so the next read is fresh.
func (s *Store) AdjustStock(ctx context.Context, id int64, delta int) (inventory.Product, error) {
	p, err := s.Store.AdjustStock(ctx, id, delta)
	if err != nil {
		s.evict(ctx, id)
		return p, err
	}
	s.set(ctx, p)
	return p, nil
}

func (s *Store) set(ctx context.Context, p inventory.Product) {
	if err := s.cache.SetProduct(ctx, p); err != nil {
		s.log.Warn(ctx, "product cache write", "product_id", p.ID, "error", err)
	}
}

func (s *Store) evict(ctx context.Context, id int64) {
	if err := s.cache.DeleteProduct(context.WithoutCancel(ctx), id); err != nil {
		s.log.Warn(ctx, "product cache evict", "product_id", id, "error", err)
	}
}
