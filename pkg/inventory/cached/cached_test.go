package cached

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/inventory/memory"
	"inventoryflow/pkg/ledger"
	"inventoryflow/pkg/logger"
)

type mapCache struct {
	mu      sync.Mutex
	m       map[int64]inventory.Product
	hits    int
	failGet bool
	gate    *gate
}

// gate parks the next cache write until resume is closed.
type gate struct {
	paused chan struct{}
	resume chan struct{}
}

func (c *mapCache) pauseNextWrite() *gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = &gate{paused: make(chan struct{}), resume: make(chan struct{})}
	return c.gate
}

func (c *mapCache) hold() {
	c.mu.Lock()
	g := c.gate
	c.gate = nil
	c.mu.Unlock()
	if g != nil {
		close(g.paused)
		<-g.resume
	}
}

func newMapCache() *mapCache {
	return &mapCache{m: make(map[int64]inventory.Product)}
}

func (c *mapCache) GetProduct(ctx context.Context, id int64) (inventory.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return inventory.Product{}, false, errors.New("cache down")
	}
	p, ok := c.m[id]
	if ok {
		c.hits++
	}
	return p, ok, nil
}

func (c *mapCache) SetProduct(ctx context.Context, p inventory.Product) error {
	c.hold()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[p.ID] = p
	return nil
}

func (c *mapCache) DeleteProduct(ctx context.Context, id int64) error {
	c.hold()
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, id)
	return nil
}

func (c *mapCache) cached(id int64) (inventory.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.m[id]
	return p, ok
}

func newStore(t *testing.T, stock int) (*Store, *mapCache, inventory.Product) {
	t.Helper()
	c := newMapCache()
	s := New(memory.New(), c, logger.Nop())
	p, err := s.InsertProduct(context.Background(), inventory.Product{
		Name: "Widget", Category: "tools", Price: decimal.NewFromInt(2), Stock: stock,
	})
	require.NoError(t, err)
	return s, c, p
}

func TestReadThrough(t *testing.T) {
	s, c, p := newStore(t, 5)
	ctx := context.Background()

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	_, ok := c.cached(p.ID)
	assert.False(t, ok, "a miss does not fill the cache")

	require.NoError(t, c.SetProduct(ctx, p))
	got, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 1, c.hits)
}

func TestStockChangesWriteBack(t *testing.T) {
	s, c, p := newStore(t, 5)
	ctx := context.Background()

	_, err := s.AdjustStock(ctx, p.ID, -2)
	require.NoError(t, err)
	cached, ok := c.cached(p.ID)
	require.True(t, ok)
	assert.Equal(t, 3, cached.Stock)

	_, err = s.AdjustStock(ctx, p.ID, -10)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	_, ok = c.cached(p.ID)
	assert.False(t, ok, "refused change evicts")

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestUpdateAndDeleteEvict(t *testing.T) {
	s, c, p := newStore(t, 5)
	ctx := context.Background()
	_, err := s.AdjustStock(ctx, p.ID, 0)
	require.NoError(t, err)

	name := "Gadget"
	_, err = s.UpdateProduct(ctx, p.ID, inventory.ProductPatch{Name: &name})
	require.NoError(t, err)
	_, ok := c.cached(p.ID)
	assert.False(t, ok)
	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)

	_, err = s.AdjustStock(ctx, p.ID, 0)
	require.NoError(t, err)
	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, ok = c.cached(p.ID)
	assert.False(t, ok)
	_, err = s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestCacheFailureFallsBackToStore(t *testing.T) {
	s, c, p := newStore(t, 5)
	c.failGet = true

	got, err := s.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
}

func TestStaleEntryDoesNotRejectReservation(t *testing.T) {
	s, c, p := newStore(t, 5)
	ctx := context.Background()
	l := ledger.New(s)

	stale := p
	stale.Stock = 0
	require.NoError(t, c.SetProduct(ctx, stale))

	r, err := l.Reserve(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Remaining)
	cached, ok := c.cached(p.ID)
	require.True(t, ok)
	assert.Equal(t, 2, cached.Stock)
}

func TestPatchOverlappingRestockLeavesNoStaleStock(t *testing.T) {
	s, c, p := newStore(t, 0)
	ctx := context.Background()
	l := ledger.New(s)

	// Park the patch's cache write after the store has answered with stock 0.
	g := c.pauseNextWrite()
	name := "Gadget"
	done := make(chan error, 1)
	go func() {
		_, err := s.UpdateProduct(ctx, p.ID, inventory.ProductPatch{Name: &name})
		done <- err
	}()
	<-g.paused

	_, err := l.Release(ctx, p.ID, 5)
	require.NoError(t, err)
	close(g.resume)
	require.NoError(t, <-done)

	r, err := l.Reserve(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Remaining)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	assert.Equal(t, "Gadget", got.Name)
}

func TestMissOverlappingReserveLeavesNoStaleStock(t *testing.T) {
	s, _, p := newStore(t, 5)
	ctx := context.Background()
	l := ledger.New(s)

	_, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	_, err = l.Reserve(ctx, p.ID, 5)
	require.NoError(t, err)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	_, err = l.Reserve(ctx, p.ID, 1)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestLedgerOverCacheUnderConcurrentWrites(t *testing.T) {
	const initial = 20
	s, c, p := newStore(t, initial)
	ctx := context.Background()
	l := ledger.New(s)

	var reserved, released atomic.Int64
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 25; i++ {
				switch i % 4 {
				case 0:
					_, err := l.Reserve(ctx, p.ID, 2)
					if errors.Is(err, inventory.ErrInsufficientStock) {
						continue
					}
					if err != nil {
						return err
					}
					reserved.Add(2)
				case 1:
					if _, err := l.Release(ctx, p.ID, 1); err != nil {
						return err
					}
					released.Add(1)
				case 2:
					name := fmt.Sprintf("Widget %d-%d", w, i)
					if _, err := l.UpdateProduct(ctx, p.ID, inventory.ProductPatch{Name: &name}); err != nil {
						return err
					}
				case 3:
					got, err := s.GetProduct(ctx, p.ID)
					if err != nil {
						return err
					}
					if got.Stock < 0 {
						return fmt.Errorf("negative stock %d", got.Stock)
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	stored, err := s.Store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, initial-int(reserved.Load())+int(released.Load()), stored.Stock)
	if cached, ok := c.cached(p.ID); ok {
		assert.Equal(t, stored, cached)
	}
}
