package accounttransaction

import (
	"context"

	"github.com/pharmalink/ledger/internal/types"
)

type Repository interface {
	Create(ctx context.Context, txn *AccountTransaction) error
	// GetLatest returns the newest row for the customer, ErrNotFound when there is none
	GetLatest(ctx context.Context, customerID string) (*AccountTransaction, error)
	ListByCustomerID(ctx context.Context, customerID string, filter *types.QueryFilter) ([]*AccountTransaction, error)
}
