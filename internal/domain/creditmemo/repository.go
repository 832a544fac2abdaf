package creditmemo

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, memo *CreditMemo) error
	Get(ctx context.Context, id string) (*CreditMemo, error)
	ListByCustomerID(ctx context.Context, customerID string) ([]*CreditMemo, error)
	// Apply moves amount from balance to applied_amount when the balance covers it,
	// otherwise ErrInsufficientBalance
	Apply(ctx context.Context, id string, amount decimal.Decimal) (*CreditMemo, error)

	CreateApplication(ctx context.Context, app *Application) error
	ListApplications(ctx context.Context, memoID string) ([]*Application, error)
}
