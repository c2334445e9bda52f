// Package order places orders against product stock and tracks their delivery.
package order

import (
	"context"
	"errors"
	"time"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/ledger"
)

// Rejection reasons returned in RejectedError.Reason.
const (
	ReasonProductNotFound   = "product not found"
	ReasonInsufficientStock = "insufficient stock"
	ReasonStorageFailure    = "storage failure"
)

// Repository defines behavior for persisting orders.
type Repository interface {
	InsertOrder(ctx context.Context, o inventory.Order) (inventory.Order, error)
	GetOrder(ctx context.Context, id int64) (inventory.Order, error)
	ListOrders(ctx context.Context) ([]inventory.Order, error)
	MarkDelivered(ctx context.Context, id int64, at time.Time) (inventory.Order, error)
}

// StockLedger reserves and releases product stock.
type StockLedger interface {
	Reserve(ctx context.Context, productID int64, quantity int) (ledger.Reservation, error)
	Release(ctx context.Context, productID int64, quantity int) (inventory.Product, error)
}

// RejectedError reports an order that was not placed. No order is stored.
// Stock reserved for the attempt is released before the error is returned;
// if that release itself fails the shortfall is logged as leaked stock.
type RejectedError struct {
	Reason string
	Err    error
}

func (e *RejectedError) Error() string { return "order rejected: " + e.Reason }

func (e *RejectedError) Unwrap() error { return e.Err }

// IsRejected reports whether err is a RejectedError and returns its reason.
func IsRejected(err error) (string, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
