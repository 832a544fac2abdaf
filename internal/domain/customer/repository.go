package customer

import "context"

type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
	// UpdateCreditProfile overwrites the credit fields on the profile
	UpdateCreditProfile(ctx context.Context, id string, profile CreditProfile) error
	// AdjustRewardPoints atomically adds delta to the point balance.
	// Returns ErrInsufficientBalance when the balance would go negative.
	AdjustRewardPoints(ctx context.Context, id string, delta int64) error
}
