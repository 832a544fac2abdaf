package testutil

import (
	"context"
	"sync"
	"time"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

// MockPostgresClient implements postgres.IClient over the in-memory stores.
// Transactions do not roll back; advisory locks are real and held until the
// outermost WithTx returns.
type MockPostgresClient struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

type mockTxKey struct{}

type mockTx struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewMockPostgresClient() *MockPostgresClient {
	return &MockPostgresClient{locks: make(map[string]chan struct{})}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(mockTxKey{}).(*mockTx); ok {
		return fn(ctx)
	}

	tx := &mockTx{held: make(map[string]chan struct{})}
	defer tx.release()
	return fn(context.WithValue(ctx, mockTxKey{}, tx))
}

func (c *MockPostgresClient) LockKey(ctx context.Context, req types.LockRequest) error {
	tx, ok := ctx.Value(mockTxKey{}).(*mockTx)
	if !ok {
		return ierr.NewError("LockKey must be called inside transaction").
			Mark(ierr.ErrInternal)
	}

	tx.mu.Lock()
	_, reentrant := tx.held[req.Key]
	tx.mu.Unlock()
	if reentrant {
		return nil
	}

	lock := c.lockFor(req.Key)
	timeout := req.GetTimeout()
	if timeout <= 0 {
		select {
		case lock <- struct{}{}:
		default:
			return lockConflict(req.Key)
		}
	} else {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case lock <- struct{}{}:
		case <-timer.C:
			return lockConflict(req.Key)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	tx.mu.Lock()
	tx.held[req.Key] = lock
	tx.mu.Unlock()
	return nil
}

func (c *MockPostgresClient) lockFor(key string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = make(chan struct{}, 1)
		c.locks[key] = lock
	}
	return lock
}

func (tx *mockTx) release() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for key, lock := range tx.held {
		<-lock
		delete(tx.held, key)
	}
}

func lockConflict(key string) error {
	return ierr.NewError("lock already held").
		WithHint("Another request is updating this record, please retry").
		WithReportableDetails(map[string]any{"lock_key": key}).
		Mark(ierr.ErrConcurrencyConflict)
}

var _ postgres.IClient = (*MockPostgresClient)(nil)
