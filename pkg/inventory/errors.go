package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound indicates an order referenced a product that does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock indicates a stock change would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrStorage wraps failures of the storage backend.
	ErrStorage = errors.New("storage failure")
	// ErrProductReferenced is returned when deleting a product that orders still reference.
	ErrProductReferenced = errors.New("product is referenced by orders")
	// ErrInvalidTransition is returned for an order status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError describes a malformed or missing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps err so that it matches ErrStorage while keeping the cause.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
