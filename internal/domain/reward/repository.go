package reward

import (
	"context"
	"time"
)

type Repository interface {
	CreateEntry(ctx context.Context, entry *LedgerEntry) error
	ListEntries(ctx context.Context, customerID string) ([]*LedgerEntry, error)

	CreateRedemption(ctx context.Context, redemption *Redemption) error
	GetRedemption(ctx context.Context, id string) (*Redemption, error)
	// MarkRedemptionUsed moves a redeemed voucher to used for orderID.
	// Returns ErrInvalidOperation when it is not in the redeemed state.
	MarkRedemptionUsed(ctx context.Context, id, orderID string, usedAt time.Time) error
}
