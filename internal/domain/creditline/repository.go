package creditline

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, line *CreditLine) error
	Get(ctx context.Context, id string) (*CreditLine, error)
	GetByCustomerID(ctx context.Context, customerID string) (*CreditLine, error)
	// UpdateTerms rewrites limit, net terms, rate, status and application of
	// the line in one conditional update, leaving used credit as stored.
	// Returns ErrInvalidOperation when the new limit is below used credit.
	UpdateTerms(ctx context.Context, line *CreditLine) (*CreditLine, error)

	// IncrementUsage adds amount to used credit in one conditional update on an
	// active line with enough available credit. Returns ErrCreditLimitExceeded
	// when the condition fails and ErrNotFound when there is no line.
	IncrementUsage(ctx context.Context, customerID string, amount decimal.Decimal) (*CreditLine, error)
	// DecrementUsage subtracts amount from used credit, flooring at zero.
	DecrementUsage(ctx context.Context, customerID string, amount decimal.Decimal) (*CreditLine, error)
}

type TermsRepository interface {
	Create(ctx context.Context, terms *SentCreditTerms) error
	GetByApplicationID(ctx context.Context, applicationID string) (*SentCreditTerms, error)
}
