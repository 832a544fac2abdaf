package offer

import "context"

type Repository interface {
	Create(ctx context.Context, offer *Offer) error
	Get(ctx context.Context, id string) (*Offer, error)
	GetByCode(ctx context.Context, code string) (*Offer, error)
	// IncrementUsage bumps used_count by one unless the usage limit is reached,
	// in which case ErrInvalidOperation is returned
	IncrementUsage(ctx context.Context, id string) error
}
