// Package memory implements an in-memory inventory store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"inventoryflow/pkg/inventory"
)

// Store provides an in-memory implementation of inventory.Store.
type Store struct {
	mu        sync.RWMutex
	products  map[int64]inventory.Product
	suppliers map[int64]inventory.Supplier
	orders    map[int64]inventory.Order
	lastID    struct{ product, supplier, order int64 }
}

var _ inventory.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		products:  make(map[int64]inventory.Product),
		suppliers: make(map[int64]inventory.Supplier),
		orders:    make(map[int64]inventory.Order),
	}
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, id int64) (inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return inventory.Product{}, inventory.ErrNotFound
	}
	return p, nil
}

// ListProducts returns all products ordered by ID.
func (s *Store) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.products, func(p inventory.Product) int64 { return p.ID }), nil
}

// InsertProduct stores the product under a fresh ID.
func (s *Store) InsertProduct(ctx context.Context, p inventory.Product) (inventory.Product, error) {
	if err := p.Validate(); err != nil {
		return inventory.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID.product++
	p.ID = s.lastID.product
	s.products[p.ID] = p
	return p, nil
}

// UpdateProduct applies patch to an existing product.
func (s *Store) UpdateProduct(ctx context.Context, id int64, patch inventory.ProductPatch) (inventory.Product, error) {
	if err := patch.Validate(); err != nil {
		return inventory.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return inventory.Product{}, inventory.ErrNotFound
	}
	p = patch.Apply(p)
	s.products[id] = p
	return p, nil
}

// DeleteProduct removes a product no order references.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return inventory.ErrNotFound
	}
	for _, o := range s.orders {
		if o.ProductID == id {
			return inventory.ErrProductReferenced
		}
	}
	delete(s.products, id)
	return nil
}

// AdjustStock adds delta to the product's stock, refusing to go below zero.
func (s *Store) AdjustStock(ctx context.Context, id int64, delta int) (inventory.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return inventory.Product{}, inventory.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return p, fmt.Errorf("product %d has %d, change %d: %w", id, p.Stock, delta, inventory.ErrInsufficientStock)
	}
	p.Stock += delta
	s.products[id] = p
	return p, nil
}

// GetSupplier retrieves a supplier by ID.
func (s *Store) GetSupplier(ctx context.Context, id int64) (inventory.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return inventory.Supplier{}, inventory.ErrNotFound
	}
	return sup, nil
}

// ListSuppliers returns all suppliers ordered by ID.
func (s *Store) ListSuppliers(ctx context.Context) ([]inventory.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.suppliers, func(sup inventory.Supplier) int64 { return sup.ID }), nil
}

// InsertSupplier stores the supplier under a fresh ID.
func (s *Store) InsertSupplier(ctx context.Context, sup inventory.Supplier) (inventory.Supplier, error) {
	if err := sup.Validate(); err != nil {
		return inventory.Supplier{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID.supplier++
	sup.ID = s.lastID.supplier
	s.suppliers[sup.ID] = sup
	return sup, nil
}

// UpdateSupplier applies patch to an existing supplier.
func (s *Store) UpdateSupplier(ctx context.Context, id int64, patch inventory.SupplierPatch) (inventory.Supplier, error) {
	if err := patch.Validate(); err != nil {
		return inventory.Supplier{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return inventory.Supplier{}, inventory.ErrNotFound
	}
	sup = patch.Apply(sup)
	s.suppliers[id] = sup
	return sup, nil
}

// GetOrder retrieves an order by ID.
func (s *Store) GetOrder(ctx context.Context, id int64) (inventory.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return inventory.Order{}, inventory.ErrNotFound
	}
	return o, nil
}

// ListOrders returns all orders ordered by ID.
func (s *Store) ListOrders(ctx context.Context) ([]inventory.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.orders, func(o inventory.Order) int64 { return o.ID }), nil
}

// InsertOrder stores the order under a fresh ID.
func (s *Store) InsertOrder(ctx context.Context, o inventory.Order) (inventory.Order, error) {
	if !o.Status.Valid() {
		return inventory.Order{}, &inventory.ValidationError{Field: "status", Reason: "unknown value"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[o.ProductID]; !ok {
		return inventory.Order{}, inventory.ErrNotFound
	}
	s.lastID.order++
	o.ID = s.lastID.order
	s.orders[o.ID] = o
	return o, nil
}

// MarkDelivered moves a pending order to delivered.
func (s *Store) MarkDelivered(ctx context.Context, id int64, at time.Time) (inventory.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return inventory.Order{}, inventory.ErrNotFound
	}
	o, err := o.Deliver(at)
	if err != nil {
		return o, err
	}
	s.orders[id] = o
	return o, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

func sorted[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
