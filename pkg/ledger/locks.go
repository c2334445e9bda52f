package ledger

import (
	"context"
	"sync"
)

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// keyedLocks hands out one exclusive lock per product id. Entries live only
// while someone holds or waits for them.
type keyedLocks struct {
	mu sync.Mutex
	m  map[int64]*lockEntry
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{m: make(map[int64]*lockEntry)}
}

// acquire blocks until the lock for id is held or ctx is done. The returned
// func releases the lock and must be called exactly once.
func (k *keyedLocks) acquire(ctx context.Context, id int64) (func(), error) {
	k.mu.Lock()
	e, ok := k.m[id]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		k.m[id] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			k.drop(id, e)
		}, nil
	case <-ctx.Done():
		k.drop(id, e)
		return nil, ctx.Err()
	}
}

func (k *keyedLocks) drop(id int64, e *lockEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.m, id)
	}
}

// size reports how many product locks are currently tracked.
func (k *keyedLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.m)
}
