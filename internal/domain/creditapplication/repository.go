package creditapplication

import (
	"context"
	"time"

	"github.com/pharmalink/ledger/internal/types"
)

type Repository interface {
	Create(ctx context.Context, app *CreditApplication) error
	Get(ctx context.Context, id string) (*CreditApplication, error)
	Update(ctx context.Context, app *CreditApplication) error
	List(ctx context.Context, filter *Filter) ([]*CreditApplication, error)
}

type Filter struct {
	*types.QueryFilter
	CustomerID string
	Statuses   []types.CreditApplicationStatus
	// CreatedBefore matches applications submitted strictly before this instant
	CreatedBefore *time.Time
}
