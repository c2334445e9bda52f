package inventory

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
)

// ParseStatus converts s into a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", invalid("status", fmt.Sprintf("unknown value %q", s))
	}
	return st, nil
}

// Valid reports whether s is one of the declared states.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDelivered
}

// CanTransition reports whether an order may move from s to next.
// pending -> delivered is the only allowed move.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next == StatusDelivered
}

// UnmarshalJSON rejects statuses outside the enumeration.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Order records a quantity of one product taken out of stock.
type Order struct {
	ID          int64      `json:"id"`
	ProductID   int64      `json:"product_id"`
	Quantity    int        `json:"quantity"`
	OrderedAt   time.Time  `json:"ordered_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	Status      Status     `json:"status" enums:"pending,delivered"`
}

// NewOrder returns a pending order stamped with now.
func NewOrder(productID int64, quantity int, now time.Time) Order {
	return Order{
		ProductID: productID,
		Quantity:  quantity,
		OrderedAt: now.UTC(),
		Status:    StatusPending,
	}
}

// OrderRequest holds the caller supplied fields of an order or restock.
type OrderRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

// ValidateOrderRequest checks the caller supplied fields of an order.
func ValidateOrderRequest(productID int64, quantity int) error {
	return check(OrderRequest{ProductID: productID, Quantity: quantity})
}

// Deliver returns o moved to delivered at the given time.
func (o Order) Deliver(at time.Time) (Order, error) {
	if !o.Status.CanTransition(StatusDelivered) {
		return o, fmt.Errorf("order %d is %s: %w", o.ID, o.Status, ErrInvalidTransition)
	}
	at = at.UTC()
	o.Status = StatusDelivered
	o.DeliveredAt = &at
	return o, nil
}
