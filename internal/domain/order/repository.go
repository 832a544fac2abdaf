package order

import (
	"context"

	"github.com/pharmalink/ledger/internal/types"
)

type Repository interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter *Filter) ([]*Order, error)
}

type Filter struct {
	*types.QueryFilter
	CustomerID string
}
