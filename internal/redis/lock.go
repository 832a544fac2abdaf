package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"

	ierr "github.com/pharmalink/ledger/internal/errors"
)

// Locker hands out distributed run locks
type Locker interface {
	// Obtain takes key for ttl. Returns ErrConcurrencyConflict when another holder has it.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}

type redisLocker struct {
	client *redislock.Client
}

// NewLocker builds a Locker on the shared Redis client
func NewLocker(c *Client) Locker {
	return &redisLocker{client: redislock.New(c.GetClient())}
}

func (l *redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ierr.WithError(err).
				WithHint("Another run already holds this lock").
				WithReportableDetails(map[string]any{"lock_key": key}).
				Mark(ierr.ErrConcurrencyConflict)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to obtain lock").
			Mark(ierr.ErrSystem)
	}
	return lock, nil
}
