// Package ledger serializes every read-modify-write of a product's stock.
//
// Reserve checks and decrements stock as one step under the product's lock,
// so two concurrent reservations can never both observe the same stock.
// Locks are per product: reservations on different products never wait on
// each other.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/otel"
)

// StockStore is the part of inventory.Store the ledger mutates. Every write
// to a product goes through the ledger so writes to one product never
// interleave.
type StockStore interface {
	AdjustStock(ctx context.Context, id int64, delta int) (inventory.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch inventory.ProductPatch) (inventory.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Reservation is the outcome of a successful Reserve.
type Reservation struct {
	ProductID int64
	Quantity  int
	// Remaining is the product's stock right after the decrement.
	Remaining int
}

// Ledger serializes writes to each product.
type Ledger struct {
	stock StockStore
	locks *keyedLocks
}

// New returns a Ledger over stock.
func New(stock StockStore) *Ledger {
	return &Ledger{stock: stock, locks: newKeyedLocks()}
}

// Reserve takes quantity units of the product out of stock. It returns
// inventory.ErrProductNotFound or inventory.ErrInsufficientStock without
// mutating anything when the reservation cannot be made. Only the wait for
// the product lock is abandoned when ctx is done; once the lock is held the
// decrement runs to completion so its outcome is always known.
func (l *Ledger) Reserve(ctx context.Context, productID int64, quantity int) (Reservation, error) {
	if err := inventory.ValidateOrderRequest(productID, quantity); err != nil {
		return Reservation{}, err
	}
	ctx, span := otel.AddSpan(ctx, "ledger.reserve",
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", quantity))
	defer span.End()

	unlock, err := l.locks.acquire(ctx, productID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Reservation{}, fmt.Errorf("wait for product %d: %w", productID, err)
	}
	defer unlock()

	// The store refuses a decrement below zero, so it decides sufficiency
	// from committed stock rather than from any cached copy.
	p, err := l.stock.AdjustStock(context.WithoutCancel(ctx), productID, -quantity)
	if err != nil {
		return Reservation{}, notFound(err)
	}
	span.SetAttributes(attribute.Int("remaining", p.Stock))
	return Reservation{ProductID: productID, Quantity: quantity, Remaining: p.Stock}, nil
}

// Release puts quantity units back into the product's stock. It is the
// compensation for a Reserve whose follow-up failed and also serves restocks.
// Release ignores cancellation of ctx: once started it waits for the lock
// and completes.
func (l *Ledger) Release(ctx context.Context, productID int64, quantity int) (inventory.Product, error) {
	if err := inventory.ValidateOrderRequest(productID, quantity); err != nil {
		return inventory.Product{}, err
	}
	ctx = context.WithoutCancel(ctx)
	ctx, span := otel.AddSpan(ctx, "ledger.release",
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", quantity))
	defer span.End()

	unlock, err := l.locks.acquire(ctx, productID)
	if err != nil {
		return inventory.Product{}, err
	}
	defer unlock()

	p, err := l.stock.AdjustStock(ctx, productID, quantity)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return inventory.Product{}, notFound(err)
	}
	return p, nil
}

// UpdateProduct applies patch while holding the product's lock.
func (l *Ledger) UpdateProduct(ctx context.Context, productID int64, patch inventory.ProductPatch) (inventory.Product, error) {
	unlock, err := l.locks.acquire(ctx, productID)
	if err != nil {
		return inventory.Product{}, err
	}
	defer unlock()
	return l.stock.UpdateProduct(context.WithoutCancel(ctx), productID, patch)
}

// DeleteProduct removes the product while holding its lock.
func (l *Ledger) DeleteProduct(ctx context.Context, productID int64) error {
	unlock, err := l.locks.acquire(ctx, productID)
	if err != nil {
		return err
	}
	defer unlock()
	return l.stock.DeleteProduct(context.WithoutCancel(ctx), productID)
}

func notFound(err error) error {
	if errors.Is(err, inventory.ErrNotFound) {
		return inventory.ErrProductNotFound
	}
	return err
}
