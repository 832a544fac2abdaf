package testutil

import (
	"context"
	"maps"
	"time"

	"github.com/samber/lo"

	"github.com/pharmalink/ledger/internal/domain/discount"
	"github.com/pharmalink/ledger/internal/domain/offer"
	"github.com/pharmalink/ledger/internal/domain/order"
	"github.com/pharmalink/ledger/internal/domain/reward"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// InMemoryOrderStore implements order.Repository
type InMemoryOrderStore struct {
	*InMemoryStore[*order.Order]
	// FailNextCreate makes the next Create return this error, then resets
	FailNextCreate error
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		InMemoryStore: NewInMemoryStore[*order.Order](),
	}
}

func copyOrder(o *order.Order) *order.Order {
	if o == nil {
		return nil
	}
	copied := *o
	copied.Items = append([]order.Item(nil), o.Items...)
	copied.DiscountDetails = append([]discount.Detail(nil), o.DiscountDetails...)
	copied.Metadata = maps.Clone(o.Metadata)
	return &copied
}

func (s *InMemoryOrderStore) Create(ctx context.Context, o *order.Order) error {
	if err := s.FailNextCreate; err != nil {
		s.FailNextCreate = nil
		return err
	}
	return s.InMemoryStore.CreateUnique(ctx, o.ID, copyOrder(o), func(existing *order.Order) error {
		if existing.OrderNumber == o.OrderNumber {
			return ierr.NewError("order number already exists").
				WithReportableDetails(map[string]any{"order_number": o.OrderNumber}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil
	})
}

func (s *InMemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !visible(ctx, o.BaseModel) {
		return nil, notFound("order", id)
	}
	return copyOrder(o), nil
}

func (s *InMemoryOrderStore) List(ctx context.Context, filter *order.Filter) ([]*order.Order, error) {
	if filter == nil {
		filter = &order.Filter{QueryFilter: types.NewDefaultQueryFilter()}
	}
	orders, err := s.InMemoryStore.List(ctx, filter, func(ctx context.Context, o *order.Order, f interface{}) bool {
		if !visible(ctx, o.BaseModel) {
			return false
		}
		of, ok := f.(*order.Filter)
		return !ok || of.CustomerID == "" || of.CustomerID == o.CustomerID
	}, func(a, b *order.Order) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(paginate(orders, filter.QueryFilter), func(o *order.Order, _ int) *order.Order {
		return copyOrder(o)
	}), nil
}

// InMemoryDiscountCommitStore implements discount.CommitRepository
type InMemoryDiscountCommitStore struct {
	*InMemoryStore[*discount.Commit]
}

func NewInMemoryDiscountCommitStore() *InMemoryDiscountCommitStore {
	return &InMemoryDiscountCommitStore{
		InMemoryStore: NewInMemoryStore[*discount.Commit](),
	}
}

func (s *InMemoryDiscountCommitStore) Create(ctx context.Context, c *discount.Commit) error {
	copied := *c
	return s.InMemoryStore.CreateUnique(ctx, c.ID, &copied, func(existing *discount.Commit) error {
		if existing.OrderID == c.OrderID && existing.InstrumentRef == c.InstrumentRef {
			return ierr.NewError("discount already committed").
				WithReportableDetails(map[string]any{
					"order_id":       c.OrderID,
					"instrument_ref": c.InstrumentRef,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil
	})
}

func (s *InMemoryDiscountCommitStore) ListByOrderID(ctx context.Context, orderID string) ([]*discount.Commit, error) {
	commits, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, c *discount.Commit, _ interface{}) bool {
		return c.OrderID == orderID && visible(ctx, c.BaseModel)
	}, nil)
	if err != nil {
		return nil, err
	}
	return lo.Map(commits, func(c *discount.Commit, _ int) *discount.Commit {
		copied := *c
		return &copied
	}), nil
}

// InMemoryOfferStore implements offer.Repository
type InMemoryOfferStore struct {
	*InMemoryStore[*offer.Offer]
}

func NewInMemoryOfferStore() *InMemoryOfferStore {
	return &InMemoryOfferStore{
		InMemoryStore: NewInMemoryStore[*offer.Offer](),
	}
}

func copyOffer(o *offer.Offer) *offer.Offer {
	if o == nil {
		return nil
	}
	copied := *o
	return &copied
}

func (s *InMemoryOfferStore) Create(ctx context.Context, o *offer.Offer) error {
	return s.InMemoryStore.CreateUnique(ctx, o.ID, copyOffer(o), func(existing *offer.Offer) error {
		if existing.Code == o.Code && existing.TenantID == o.TenantID {
			return ierr.NewError("offer code already exists").
				WithHint("An offer with this code already exists").
				WithReportableDetails(map[string]any{"code": o.Code}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil
	})
}

func (s *InMemoryOfferStore) Get(ctx context.Context, id string) (*offer.Offer, error) {
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !visible(ctx, o.BaseModel) {
		return nil, notFound("offer", id)
	}
	return copyOffer(o), nil
}

func (s *InMemoryOfferStore) GetByCode(ctx context.Context, code string) (*offer.Offer, error) {
	o, ok := s.InMemoryStore.Find(ctx, func(o *offer.Offer) bool {
		return o.Code == code && visible(ctx, o.BaseModel)
	})
	if !ok {
		return nil, notFound("offer", code)
	}
	return copyOffer(o), nil
}

func (s *InMemoryOfferStore) IncrementUsage(ctx context.Context, id string) error {
	err := s.InMemoryStore.Mutate(ctx, id, func(o *offer.Offer) error {
		if o.IsExhausted() {
			return ierr.NewError("offer usage limit reached").
				WithHint("This promo code has reached its usage limit").
				WithReportableDetails(map[string]any{"offer_id": id}).
				Mark(ierr.ErrInvalidOperation)
		}
		o.UsedCount++
		touchBase(ctx, &o.BaseModel)
		return nil
	})
	if ierr.IsNotFound(err) {
		return notFound("offer", id)
	}
	return err
}

// InMemoryRewardStore implements reward.Repository
type InMemoryRewardStore struct {
	entries     *InMemoryStore[*reward.LedgerEntry]
	redemptions *InMemoryStore[*reward.Redemption]
}

func NewInMemoryRewardStore() *InMemoryRewardStore {
	return &InMemoryRewardStore{
		entries:     NewInMemoryStore[*reward.LedgerEntry](),
		redemptions: NewInMemoryStore[*reward.Redemption](),
	}
}

func (s *InMemoryRewardStore) CreateEntry(ctx context.Context, entry *reward.LedgerEntry) error {
	copied := *entry
	return s.entries.Create(ctx, entry.ID, &copied)
}

func (s *InMemoryRewardStore) ListEntries(ctx context.Context, customerID string) ([]*reward.LedgerEntry, error) {
	entries, err := s.entries.List(ctx, nil, func(ctx context.Context, e *reward.LedgerEntry, _ interface{}) bool {
		return e.CustomerID == customerID && visible(ctx, e.BaseModel)
	}, nil)
	if err != nil {
		return nil, err
	}
	return lo.Map(entries, func(e *reward.LedgerEntry, _ int) *reward.LedgerEntry {
		copied := *e
		return &copied
	}), nil
}

func (s *InMemoryRewardStore) CreateRedemption(ctx context.Context, rd *reward.Redemption) error {
	copied := *rd
	return s.redemptions.Create(ctx, rd.ID, &copied)
}

func (s *InMemoryRewardStore) GetRedemption(ctx context.Context, id string) (*reward.Redemption, error) {
	rd, err := s.redemptions.Get(ctx, id)
	if err != nil || !visible(ctx, rd.BaseModel) {
		return nil, notFound("reward redemption", id)
	}
	copied := *rd
	return &copied, nil
}

func (s *InMemoryRewardStore) MarkRedemptionUsed(ctx context.Context, id, orderID string, usedAt time.Time) error {
	err := s.redemptions.Mutate(ctx, id, func(rd *reward.Redemption) error {
		if rd.RedemptionStatus != types.RewardRedemptionStatusRedeemed {
			return ierr.NewError("redemption is not available").
				WithHint("This reward voucher was already used or has expired").
				WithReportableDetails(map[string]any{
					"redemption_id": id,
					"status":        rd.RedemptionStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		rd.RedemptionStatus = types.RewardRedemptionStatusUsed
		rd.OrderID = orderID
		rd.UsedAt = &usedAt
		touchBase(ctx, &rd.BaseModel)
		return nil
	})
	if ierr.IsNotFound(err) {
		return notFound("reward redemption", id)
	}
	return err
}

func (s *InMemoryRewardStore) Clear() {
	s.entries.Clear()
	s.redemptions.Clear()
}

var (
	_ order.Repository          = (*InMemoryOrderStore)(nil)
	_ discount.CommitRepository = (*InMemoryDiscountCommitStore)(nil)
	_ offer.Repository          = (*InMemoryOfferStore)(nil)
	_ reward.Repository         = (*InMemoryRewardStore)(nil)
)
