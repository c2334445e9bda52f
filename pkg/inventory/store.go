package inventory

import (
	"context"
	"time"
)

// Store defines behavior for persisting products, suppliers and orders.
// Every method is atomic for the single record it touches.
type Store interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	InsertProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (Product, error)
	// DeleteProduct returns ErrProductReferenced while orders point at the product.
	DeleteProduct(ctx context.Context, id int64) error
	// AdjustStock adds delta to the product's stock. A delta that would leave
	// stock negative fails with ErrInsufficientStock and changes nothing.
	// Only the stock ledger should call it.
	AdjustStock(ctx context.Context, id int64, delta int) (Product, error)

	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	InsertSupplier(ctx context.Context, s Supplier) (Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, patch SupplierPatch) (Supplier, error)

	GetOrder(ctx context.Context, id int64) (Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	// InsertOrder fails with ErrNotFound if the referenced product is missing.
	InsertOrder(ctx context.Context, o Order) (Order, error)
	MarkDelivered(ctx context.Context, id int64, at time.Time) (Order, error)

	Ping(ctx context.Context) error
}
