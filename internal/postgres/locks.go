package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// LockKey acquires a transaction scoped advisory lock for req.Key.
// A nil Timeout waits up to 30 seconds, zero or negative fails fast.
// Released on commit or rollback. sqlite serializes writers itself, so it is a no-op there.
func (c *Client) LockKey(ctx context.Context, req types.LockRequest) error {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return ierr.NewError("LockKey must be called inside transaction").
			Mark(ierr.ErrInternal)
	}
	if c.driver == types.DatabaseDriverSQLite {
		return nil
	}

	timeout := req.GetTimeout()

	if timeout <= 0 {
		ok, err := c.TryLockKey(ctx, req.Key)
		if err != nil {
			return err
		}
		if !ok {
			return ierr.NewError("lock already held").
				WithHint("Another request is updating this record, please retry").
				WithReportableDetails(map[string]any{"lock_key": req.Key}).
				Mark(ierr.ErrConcurrencyConflict)
		}
		return nil
	}

	// SET LOCAL is reset on commit/rollback
	timeoutMs := int(timeout.Milliseconds())
	if err := tx.WithContext(ctx).Exec(fmt.Sprintf("SET LOCAL lock_timeout = %d", timeoutMs)).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to set lock timeout").
			Mark(ierr.ErrDatabase)
	}

	if err := tx.WithContext(ctx).Exec(`SELECT pg_advisory_xact_lock(hashtext(?))`, req.Key).Error; err != nil {
		if isLockTimeoutError(err) {
			return ierr.WithError(err).
				WithHintf("Failed to acquire lock within %v", timeout).
				WithReportableDetails(map[string]any{"lock_key": req.Key}).
				Mark(ierr.ErrConcurrencyConflict)
		}
		return ierr.WithError(err).
			WithHint("Failed to acquire lock").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

// isLockTimeoutError matches PostgreSQL 55P03 (lock_not_available)
func isLockTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "55P03"
	}

	return false
}

// TryLockKey tries acquiring the advisory lock immediately.
// Returns ok=false if the lock is already held.
func (c *Client) TryLockKey(ctx context.Context, key string) (bool, error) {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return false, ierr.NewError("TryLockKey must be called inside transaction").
			Mark(ierr.ErrInternal)
	}
	if c.driver == types.DatabaseDriverSQLite {
		return true, nil
	}

	var ok bool
	if err := tx.WithContext(ctx).Raw(`SELECT pg_try_advisory_xact_lock(hashtext(?))`, key).Scan(&ok).Error; err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to try lock").
			Mark(ierr.ErrDatabase)
	}

	return ok, nil
}
