package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/invoice"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	copied := *inv
	if inv.LastPenaltyDate != nil {
		copied.LastPenaltyDate = lo.ToPtr(*inv.LastPenaltyDate)
	}
	if inv.PaidAt != nil {
		copied.PaidAt = lo.ToPtr(*inv.PaidAt)
	}
	return &copied
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	return s.InMemoryStore.CreateUnique(ctx, inv.ID, copyInvoice(inv), func(existing *invoice.Invoice) error {
		if existing.TenantID != inv.TenantID {
			return nil
		}
		if existing.OrderID == inv.OrderID {
			return ierr.NewError("invoice already exists for order").
				WithHint("An invoice already exists for this order").
				WithReportableDetails(map[string]any{"order_id": inv.OrderID}).
				Mark(ierr.ErrDuplicateInvoice)
		}
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return ierr.NewError("invoice number already taken").
				WithHint("Invoice number was allocated concurrently").
				WithReportableDetails(map[string]any{"invoice_number": inv.InvoiceNumber}).
				Mark(ierr.ErrConcurrencyConflict)
		}
		return nil
	})
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !visible(ctx, inv.BaseModel) {
		return nil, notFound("invoice", id)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) GetByOrderID(ctx context.Context, orderID string) (*invoice.Invoice, error) {
	inv, ok := s.InMemoryStore.Find(ctx, func(i *invoice.Invoice) bool {
		return i.OrderID == orderID && visible(ctx, i.BaseModel)
	})
	if !ok {
		return nil, notFound("invoice for order", orderID)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	touchBase(ctx, &inv.BaseModel)
	if err := s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return notFound("invoice", inv.ID)
	}
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	invoices, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, func(a, b *invoice.Invoice) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(paginate(invoices, filter.QueryFilter), func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if !visible(ctx, inv.BaseModel) {
		return false
	}
	f, ok := filter.(*types.InvoiceFilter)
	if !ok {
		return true
	}
	if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
		return false
	}
	if len(f.OrderIDs) > 0 && !lo.Contains(f.OrderIDs, inv.OrderID) {
		return false
	}
	if len(f.InvoiceStatuses) > 0 && !lo.Contains(f.InvoiceStatuses, inv.InvoiceStatus) {
		return false
	}
	if f.OnlyOutstanding && !inv.BalanceDue.IsPositive() {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && inv.CreatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && !inv.CreatedAt.Before(*f.EndTime) {
			return false
		}
	}
	return true
}

func (s *InMemoryInvoiceStore) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return s.InMemoryStore.MutateAll(ctx, func(inv *invoice.Invoice) bool {
		if !visible(ctx, inv.BaseModel) ||
			inv.InvoiceStatus != types.InvoiceStatusPending ||
			!inv.DueDate.Before(asOf) ||
			!inv.BalanceDue.IsPositive() {
			return false
		}
		inv.InvoiceStatus = types.InvoiceStatusOverdue
		touchBase(ctx, &inv.BaseModel)
		return true
	}), nil
}

func (s *InMemoryInvoiceStore) ApplyPenalty(ctx context.Context, id string, penalty, balanceDue decimal.Decimal, day time.Time) (bool, error) {
	applied := false
	err := s.InMemoryStore.Mutate(ctx, id, func(inv *invoice.Invoice) error {
		if inv.InvoiceStatus != types.InvoiceStatusOverdue {
			return nil
		}
		if inv.LastPenaltyDate != nil && !inv.LastPenaltyDate.Before(day) {
			return nil
		}
		inv.PenaltyAmount = penalty
		inv.BalanceDue = balanceDue
		inv.LastPenaltyDate = lo.ToPtr(day)
		touchBase(ctx, &inv.BaseModel)
		applied = true
		return nil
	})
	if err != nil {
		return false, notFound("invoice", id)
	}
	return applied, nil
}

// InMemorySequenceStore implements invoice.SequenceRepository
type InMemorySequenceStore struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{values: make(map[string]int64)}
}

func (s *InMemorySequenceStore) Next(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := types.GetTenantID(ctx) + "/" + key
	s.values[k]++
	return s.values[k], nil
}

func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]int64)
}

var (
	_ invoice.Repository         = (*InMemoryInvoiceStore)(nil)
	_ invoice.SequenceRepository = (*InMemorySequenceStore)(nil)
)
