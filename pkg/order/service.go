package order

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/logger"
	"inventoryflow/pkg/otel"
)

// Service orchestrates order placement: reserve stock, persist the order,
// and give the stock back if persisting fails.
type Service struct {
	repo   Repository
	ledger StockLedger
	log    *logger.Logger
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for ordered_at and delivered_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service persisting through repo and reserving via l.
func NewService(repo Repository, l StockLedger, log *logger.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, ledger: l, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder reserves quantity units of the product and records a pending
// order for them. Unplaceable orders return a *RejectedError wrapping
// inventory.ErrProductNotFound, inventory.ErrInsufficientStock or the storage
// error. A cancelled ctx only interrupts the wait for the product lock: once
// stock is reserved the order is written and, on failure, the reservation
// released regardless of ctx.
func (s *Service) PlaceOrder(ctx context.Context, productID int64, quantity int) (inventory.Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.place",
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", quantity))
	defer span.End()

	if err := inventory.ValidateOrderRequest(productID, quantity); err != nil {
		return inventory.Order{}, err
	}

	if _, err := s.ledger.Reserve(ctx, productID, quantity); err != nil {
		switch {
		case errors.Is(err, inventory.ErrProductNotFound):
			s.log.Info(ctx, "order rejected", "reason", ReasonProductNotFound, "product_id", productID)
			return inventory.Order{}, &RejectedError{Reason: ReasonProductNotFound, Err: err}
		case errors.Is(err, inventory.ErrInsufficientStock):
			s.log.Info(ctx, "order rejected", "reason", ReasonInsufficientStock, "product_id", productID, "quantity", quantity)
			return inventory.Order{}, &RejectedError{Reason: ReasonInsufficientStock, Err: err}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return inventory.Order{}, err
		}
		span.SetStatus(codes.Error, err.Error())
		s.log.Error(ctx, "reserve stock", "product_id", productID, "error", err)
		return inventory.Order{}, &RejectedError{Reason: ReasonStorageFailure, Err: err}
	}

	o, err := s.repo.InsertOrder(context.WithoutCancel(ctx), inventory.NewOrder(productID, quantity, s.now()))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.log.Error(ctx, "insert order, releasing reservation", "product_id", productID, "quantity", quantity, "error", err)
		s.compensate(ctx, productID, quantity)
		if errors.Is(err, inventory.ErrNotFound) {
			return inventory.Order{}, &RejectedError{Reason: ReasonProductNotFound, Err: inventory.ErrProductNotFound}
		}
		return inventory.Order{}, &RejectedError{Reason: ReasonStorageFailure, Err: err}
	}

	span.SetAttributes(attribute.Int64("order_id", o.ID))
	s.log.Info(ctx, "order placed", "order_id", o.ID, "product_id", productID, "quantity", quantity)
	return o, nil
}

// compensate gives reserved stock back. It runs to completion even when the
// caller has gone away.
func (s *Service) compensate(ctx context.Context, productID int64, quantity int) {
	ctx = context.WithoutCancel(ctx)
	_, err := s.ledger.Release(ctx, productID, quantity)
	if errors.Is(err, inventory.ErrProductNotFound) {
		// The product was deleted after the reservation; its stock went with it.
		s.log.Warn(ctx, "product deleted before order was stored, nothing to release",
			"product_id", productID, "quantity", quantity)
		return
	}
	if err != nil {
		s.log.Error(ctx, "release reservation failed, stock leaked",
			"product_id", productID, "quantity", quantity, "error", err)
		return
	}
	s.log.Info(ctx, "reservation released", "product_id", productID, "quantity", quantity)
}

// Get retrieves an order by ID.
func (s *Service) Get(ctx context.Context, id int64) (inventory.Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.get", attribute.Int64("order_id", id))
	defer span.End()
	return s.repo.GetOrder(ctx, id)
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]inventory.Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.list")
	defer span.End()
	return s.repo.ListOrders(ctx)
}

// Deliver moves a pending order to delivered.
func (s *Service) Deliver(ctx context.Context, id int64) (inventory.Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.deliver", attribute.Int64("order_id", id))
	defer span.End()

	o, err := s.repo.MarkDelivered(ctx, id, s.now())
	if err != nil {
		return o, err
	}
	s.log.Info(ctx, "order delivered", "order_id", id)
	return o, nil
}
