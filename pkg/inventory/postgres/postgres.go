package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"inventoryflow/pkg/inventory"
)

const (
	productColumns  = "id,name,category,price,stock"
	supplierColumns = "id,name,contact_email,contact_phone"
	orderColumns    = "id,product_id,quantity,ordered_at,delivered_at,status"

	// SQLSTATE codes raised by the schema constraints.
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// Repository persists inventory records in PostgreSQL.
type Repository struct {
	db *sql.DB
}

var _ inventory.Store = (*Repository)(nil)

// New creates a PostgreSQL repository. The schema must already exist; see Migrate.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (inventory.Product, error) {
	var p inventory.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock)
	return p, err
}

func scanSupplier(row scanner) (inventory.Supplier, error) {
	var s inventory.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactEmail, &s.ContactPhone)
	return s, err
}

func scanOrder(row scanner) (inventory.Order, error) {
	var (
		o         inventory.Order
		delivered sql.NullTime
		status    string
	)
	if err := row.Scan(&o.ID, &o.ProductID, &o.Quantity, &o.OrderedAt, &delivered, &status); err != nil {
		return o, err
	}
	st, err := inventory.ParseStatus(status)
	if err != nil {
		return o, err
	}
	o.Status = st
	o.OrderedAt = o.OrderedAt.UTC()
	if delivered.Valid {
		at := delivered.Time.UTC()
		o.DeliveredAt = &at
	}
	return o, nil
}

// one maps a single-row result onto the inventory error taxonomy.
func one[T any](op string, v T, err error) (T, error) {
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, sql.ErrNoRows):
		return v, inventory.ErrNotFound
	default:
		return v, inventory.StorageError(op, err)
	}
}

func list[T any](ctx context.Context, db *sql.DB, op, query string, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, inventory.StorageError(op, err)
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, inventory.StorageError(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, inventory.StorageError(op, err)
	}
	return out, nil
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// GetProduct retrieves a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id int64) (inventory.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id=$1", id))
	return one("get product", p, err)
}

// ListProducts fetches all products.
func (r *Repository) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	return list(ctx, r.db, "list products", "SELECT "+productColumns+" FROM products ORDER BY id", scanProduct)
}

// InsertProduct inserts a new product and returns it with its assigned ID.
func (r *Repository) InsertProduct(ctx context.Context, p inventory.Product) (inventory.Product, error) {
	if err := p.Validate(); err != nil {
		return inventory.Product{}, err
	}
	got, err := scanProduct(r.db.QueryRowContext(ctx,
		"INSERT INTO products (name,category,price,stock) VALUES ($1,$2,$3,$4) RETURNING "+productColumns,
		p.Name, p.Category, p.Price, p.Stock))
	return one("insert product", got, err)
}

// UpdateProduct applies the non-nil fields of patch.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, patch inventory.ProductPatch) (inventory.Product, error) {
	if err := patch.Validate(); err != nil {
		return inventory.Product{}, err
	}
	got, err := scanProduct(r.db.QueryRowContext(ctx,
		`UPDATE products SET name=COALESCE($2,name), category=COALESCE($3,category), price=COALESCE($4,price)
		WHERE id=$1 RETURNING `+productColumns,
		id, patch.Name, patch.Category, patch.Price))
	return one("update product", got, err)
}

// DeleteProduct removes a product by ID. The orders foreign key restricts
// deletion of referenced products.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id=$1", id)
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return inventory.ErrProductReferenced
		}
		return inventory.StorageError("delete product", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

// AdjustStock changes stock with a single conditional UPDATE so the check and
// the write cannot interleave with another session.
func (r *Repository) AdjustStock(ctx context.Context, id int64, delta int) (inventory.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"UPDATE products SET stock=stock+$2 WHERE id=$1 AND stock+$2 >= 0 RETURNING "+productColumns,
		id, delta))
	if err == nil {
		return p, nil
	}
	if pqCode(err) == checkViolation {
		return inventory.Product{}, fmt.Errorf("product %d: %w", id, inventory.ErrInsufficientStock)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return inventory.Product{}, inventory.StorageError("adjust stock", err)
	}
	// No row matched: either the product is gone or the change was refused.
	current, err := r.GetProduct(ctx, id)
	if err != nil {
		return inventory.Product{}, err
	}
	return current, fmt.Errorf("product %d has %d, change %d: %w", id, current.Stock, delta, inventory.ErrInsufficientStock)
}

// GetSupplier retrieves a supplier by ID.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (inventory.Supplier, error) {
	s, err := scanSupplier(r.db.QueryRowContext(ctx, "SELECT "+supplierColumns+" FROM suppliers WHERE id=$1", id))
	return one("get supplier", s, err)
}

// ListSuppliers fetches all suppliers.
func (r *Repository) ListSuppliers(ctx context.Context) ([]inventory.Supplier, error) {
	return list(ctx, r.db, "list suppliers", "SELECT "+supplierColumns+" FROM suppliers ORDER BY id", scanSupplier)
}

// InsertSupplier inserts a new supplier.
func (r *Repository) InsertSupplier(ctx context.Context, s inventory.Supplier) (inventory.Supplier, error) {
	if err := s.Validate(); err != nil {
		return inventory.Supplier{}, err
	}
	got, err := scanSupplier(r.db.QueryRowContext(ctx,
		"INSERT INTO suppliers (name,contact_email,contact_phone) VALUES ($1,$2,$3) RETURNING "+supplierColumns,
		s.Name, s.ContactEmail, s.ContactPhone))
	return one("insert supplier", got, err)
}

// UpdateSupplier applies the non-nil fields of patch.
func (r *Repository) UpdateSupplier(ctx context.Context, id int64, patch inventory.SupplierPatch) (inventory.Supplier, error) {
	if err := patch.Validate(); err != nil {
		return inventory.Supplier{}, err
	}
	got, err := scanSupplier(r.db.QueryRowContext(ctx,
		`UPDATE suppliers SET name=COALESCE($2,name), contact_email=COALESCE($3,contact_email), contact_phone=COALESCE($4,contact_phone)
		WHERE id=$1 RETURNING `+supplierColumns,
		id, patch.Name, patch.ContactEmail, patch.ContactPhone))
	return one("update supplier", got, err)
}

// GetOrder retrieves an order by ID.
func (r *Repository) GetOrder(ctx context.Context, id int64) (inventory.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id=$1", id))
	return one("get order", o, err)
}

// ListOrders fetches all orders.
func (r *Repository) ListOrders(ctx context.Context) ([]inventory.Order, error) {
	return list(ctx, r.db, "list orders", "SELECT "+orderColumns+" FROM orders ORDER BY id", scanOrder)
}

// InsertOrder inserts a new order. A missing product surfaces as ErrNotFound.
func (r *Repository) InsertOrder(ctx context.Context, o inventory.Order) (inventory.Order, error) {
	if !o.Status.Valid() {
		return inventory.Order{}, &inventory.ValidationError{Field: "status", Reason: "unknown value"}
	}
	got, err := scanOrder(r.db.QueryRowContext(ctx,
		"INSERT INTO orders (product_id,quantity,ordered_at,delivered_at,status) VALUES ($1,$2,$3,$4,$5) RETURNING "+orderColumns,
		o.ProductID, o.Quantity, o.OrderedAt, o.DeliveredAt, string(o.Status)))
	if pqCode(err) == foreignKeyViolation {
		return inventory.Order{}, inventory.ErrNotFound
	}
	return one("insert order", got, err)
}

// MarkDelivered moves a pending order to delivered.
func (r *Repository) MarkDelivered(ctx context.Context, id int64, at time.Time) (inventory.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		"UPDATE orders SET status=$3, delivered_at=$2 WHERE id=$1 AND status=$4 RETURNING "+orderColumns,
		id, at.UTC(), string(inventory.StatusDelivered), string(inventory.StatusPending)))
	if !errors.Is(err, sql.ErrNoRows) {
		return one("mark delivered", o, err)
	}
	current, err := r.GetOrder(ctx, id)
	if err != nil {
		return inventory.Order{}, err
	}
	return current, fmt.Errorf("order %d is %s: %w", id, current.Status, inventory.ErrInvalidTransition)
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return inventory.StorageError("ping", err)
	}
	return nil
}
