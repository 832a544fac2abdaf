package testutil

import (
	"context"

	"github.com/pharmalink/ledger/internal/domain/customer"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func copyCustomer(c *customer.Customer) *customer.Customer {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	if c == nil {
		return ierr.NewError("customer cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, copyCustomer(c))
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !visible(ctx, c.BaseModel) {
		return nil, notFound("customer", id)
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) UpdateCreditProfile(ctx context.Context, id string, profile customer.CreditProfile) error {
	err := s.InMemoryStore.Mutate(ctx, id, func(c *customer.Customer) error {
		c.CreditApproved = profile.CreditApproved
		c.CreditLimit = profile.CreditLimit
		c.NetTerms = profile.NetTerms
		c.InterestRate = profile.InterestRate
		touchBase(ctx, &c.BaseModel)
		return nil
	})
	if err != nil {
		return notFound("customer", id)
	}
	return nil
}

func (s *InMemoryCustomerStore) AdjustRewardPoints(ctx context.Context, id string, delta int64) error {
	return s.InMemoryStore.Mutate(ctx, id, func(c *customer.Customer) error {
		if c.RewardPoints+delta < 0 {
			return ierr.NewError("insufficient reward points").
				WithHint("Customer does not have enough reward points").
				WithReportableDetails(map[string]any{
					"customer_id": id,
					"balance":     c.RewardPoints,
					"delta":       delta,
				}).
				Mark(ierr.ErrInsufficientBalance)
		}
		c.RewardPoints += delta
		touchBase(ctx, &c.BaseModel)
		return nil
	})
}

// SetRewardPoints overwrites the balance, for test setup
func (s *InMemoryCustomerStore) SetRewardPoints(ctx context.Context, id string, points int64) error {
	return s.InMemoryStore.Mutate(ctx, id, func(c *customer.Customer) error {
		c.RewardPoints = points
		return nil
	})
}

var _ customer.Repository = (*InMemoryCustomerStore)(nil)

func touchBase(ctx context.Context, base *types.BaseModel) {
	base.UpdatedAt = nowUTC()
	base.UpdatedBy = types.GetUserID(ctx)
}
