package postgres

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventoryflow/pkg/inventory"
)

// openTestDB connects to INVENTORYFLOW_TEST_DATABASE_URL and resets the schema.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("INVENTORYFLOW_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("INVENTORYFLOW_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn, PoolConfig{MaxOpenConns: 10, MaxIdleConns: 2, ConnMaxLifetime: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS orders, suppliers, products")
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestRepositoryProducts(t *testing.T) {
	repo := New(openTestDB(t))
	ctx := context.Background()

	p, err := repo.InsertProduct(ctx, inventory.Product{Name: "Widget", Category: "tools", Price: decimal.RequireFromString("9.99"), Stock: 5})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("9.99")))

	name := "Gadget"
	p, err = repo.UpdateProduct(ctx, p.ID, inventory.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Gadget", p.Name)
	assert.Equal(t, "tools", p.Category)

	p, err = repo.AdjustStock(ctx, p.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	_, err = repo.AdjustStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	_, err = repo.AdjustStock(ctx, p.ID+1000, 1)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	_, err = repo.GetProduct(ctx, p.ID+1000)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestRepositoryOrders(t *testing.T) {
	repo := New(openTestDB(t))
	ctx := context.Background()

	p, err := repo.InsertProduct(ctx, inventory.Product{Name: "Widget", Category: "tools", Price: decimal.NewFromInt(1), Stock: 1})
	require.NoError(t, err)

	_, err = repo.InsertOrder(ctx, inventory.NewOrder(p.ID+1000, 1, time.Now()))
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	o, err := repo.InsertOrder(ctx, inventory.NewOrder(p.ID, 1, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusPending, o.Status)
	assert.Nil(t, o.DeliveredAt)

	assert.ErrorIs(t, repo.DeleteProduct(ctx, p.ID), inventory.ErrProductReferenced)

	o, err = repo.MarkDelivered(ctx, o.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)

	_, err = repo.MarkDelivered(ctx, o.ID, time.Now())
	assert.ErrorIs(t, err, inventory.ErrInvalidTransition)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestRepositorySuppliers(t *testing.T) {
	repo := New(openTestDB(t))
	ctx := context.Background()

	s, err := repo.InsertSupplier(ctx, inventory.Supplier{Name: "Acme", ContactEmail: "a@acme.test", ContactPhone: "555"})
	require.NoError(t, err)
	email := "b@acme.test"
	s, err = repo.UpdateSupplier(ctx, s.ID, inventory.SupplierPatch{ContactEmail: &email})
	require.NoError(t, err)
	assert.Equal(t, "b@acme.test", s.ContactEmail)
	assert.Equal(t, "Acme", s.Name)

	list, err := repo.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAdjustStockConcurrentSessions(t *testing.T) {
	repo := New(openTestDB(t))
	ctx := context.Background()
	p, err := repo.InsertProduct(ctx, inventory.Product{Name: "Widget", Category: "tools", Price: decimal.NewFromInt(1), Stock: 10})
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustStock(ctx, p.ID, -1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	got, err := repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}
