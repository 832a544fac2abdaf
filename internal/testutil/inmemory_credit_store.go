package testutil

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// InMemoryCreditApplicationStore implements creditapplication.Repository
type InMemoryCreditApplicationStore struct {
	*InMemoryStore[*creditapplication.CreditApplication]
}

func NewInMemoryCreditApplicationStore() *InMemoryCreditApplicationStore {
	return &InMemoryCreditApplicationStore{
		InMemoryStore: NewInMemoryStore[*creditapplication.CreditApplication](),
	}
}

func copyCreditApplication(a *creditapplication.CreditApplication) *creditapplication.CreditApplication {
	if a == nil {
		return nil
	}
	copied := *a
	copied.BusinessInfo = lo.Assign(map[string]string{}, a.BusinessInfo)
	copied.BankInfo = lo.Assign(map[string]string{}, a.BankInfo)
	copied.TradeReferences = append([]creditapplication.TradeReference(nil), a.TradeReferences...)
	return &copied
}

func (s *InMemoryCreditApplicationStore) Create(ctx context.Context, app *creditapplication.CreditApplication) error {
	return s.InMemoryStore.Create(ctx, app.ID, copyCreditApplication(app))
}

func (s *InMemoryCreditApplicationStore) Get(ctx context.Context, id string) (*creditapplication.CreditApplication, error) {
	app, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !visible(ctx, app.BaseModel) {
		return nil, notFound("credit application", id)
	}
	return copyCreditApplication(app), nil
}

func (s *InMemoryCreditApplicationStore) Update(ctx context.Context, app *creditapplication.CreditApplication) error {
	touchBase(ctx, &app.BaseModel)
	if err := s.InMemoryStore.Update(ctx, app.ID, copyCreditApplication(app)); err != nil {
		return notFound("credit application", app.ID)
	}
	return nil
}

func (s *InMemoryCreditApplicationStore) List(ctx context.Context, filter *creditapplication.Filter) ([]*creditapplication.CreditApplication, error) {
	if filter == nil {
		filter = &creditapplication.Filter{QueryFilter: types.NewDefaultQueryFilter()}
	}
	apps, err := s.InMemoryStore.List(ctx, filter, creditApplicationFilterFn, func(a, b *creditapplication.CreditApplication) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(paginate(apps, filter.QueryFilter), func(a *creditapplication.CreditApplication, _ int) *creditapplication.CreditApplication {
		return copyCreditApplication(a)
	}), nil
}

func creditApplicationFilterFn(ctx context.Context, a *creditapplication.CreditApplication, filter interface{}) bool {
	if !visible(ctx, a.BaseModel) {
		return false
	}
	f, ok := filter.(*creditapplication.Filter)
	if !ok {
		return true
	}
	if f.CustomerID != "" && a.CustomerID != f.CustomerID {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, a.ApplicationStatus) {
		return false
	}
	if f.CreatedBefore != nil && !a.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	return true
}

// InMemoryCreditLineStore implements creditline.Repository
type InMemoryCreditLineStore struct {
	*InMemoryStore[*creditline.CreditLine]
}

func NewInMemoryCreditLineStore() *InMemoryCreditLineStore {
	return &InMemoryCreditLineStore{
		InMemoryStore: NewInMemoryStore[*creditline.CreditLine](),
	}
}

func copyCreditLine(l *creditline.CreditLine) *creditline.CreditLine {
	if l == nil {
		return nil
	}
	copied := *l
	return &copied
}

func (s *InMemoryCreditLineStore) Create(ctx context.Context, line *creditline.CreditLine) error {
	line.Recompute()
	return s.InMemoryStore.CreateUnique(ctx, line.ID, copyCreditLine(line), func(existing *creditline.CreditLine) error {
		if existing.CustomerID == line.CustomerID && existing.TenantID == line.TenantID {
			return ierr.NewError("credit line already exists").
				WithHint("Customer already has a credit line").
				WithReportableDetails(map[string]any{"customer_id": line.CustomerID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil
	})
}

func (s *InMemoryCreditLineStore) Get(ctx context.Context, id string) (*creditline.CreditLine, error) {
	line, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !visible(ctx, line.BaseModel) {
		return nil, notFound("credit line", id)
	}
	return copyCreditLine(line), nil
}

func (s *InMemoryCreditLineStore) GetByCustomerID(ctx context.Context, customerID string) (*creditline.CreditLine, error) {
	line, ok := s.InMemoryStore.Find(ctx, func(l *creditline.CreditLine) bool {
		return l.CustomerID == customerID && visible(ctx, l.BaseModel)
	})
	if !ok {
		return nil, notFound("credit line for customer", customerID)
	}
	return copyCreditLine(line), nil
}

func (s *InMemoryCreditLineStore) UpdateTerms(ctx context.Context, line *creditline.CreditLine) (*creditline.CreditLine, error) {
	var updated *creditline.CreditLine
	err := s.InMemoryStore.MutateFirst(ctx, func(l *creditline.CreditLine) bool {
		return l.CustomerID == line.CustomerID && visible(ctx, l.BaseModel)
	}, func(l *creditline.CreditLine) error {
		if line.CreditLimit.LessThan(l.UsedCredit) {
			return ierr.NewError("credit limit below used credit").
				WithHint("The new limit is below the credit already drawn").
				WithReportableDetails(map[string]any{
					"customer_id":  l.CustomerID,
					"credit_limit": line.CreditLimit,
					"used_credit":  l.UsedCredit,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		l.CreditLimit = line.CreditLimit
		l.NetTerms = line.NetTerms
		l.InterestRate = line.InterestRate
		l.CreditLineStatus = line.CreditLineStatus
		l.ApplicationID = line.ApplicationID
		l.Recompute()
		touchBase(ctx, &l.BaseModel)
		updated = copyCreditLine(l)
		return nil
	})
	if ierr.IsNotFound(err) {
		return nil, notFound("credit line for customer", line.CustomerID)
	}
	return updated, err
}

func (s *InMemoryCreditLineStore) IncrementUsage(ctx context.Context, customerID string, amount decimal.Decimal) (*creditline.CreditLine, error) {
	var updated *creditline.CreditLine
	err := s.InMemoryStore.MutateFirst(ctx, func(l *creditline.CreditLine) bool {
		return l.CustomerID == customerID && visible(ctx, l.BaseModel)
	}, func(l *creditline.CreditLine) error {
		if !l.IsActive() {
			return ierr.NewError("credit line is not active").
				WithHint("Credit line is suspended").
				WithReportableDetails(map[string]any{"customer_id": customerID}).
				Mark(ierr.ErrInvalidOperation)
		}
		if amount.GreaterThan(l.AvailableCredit) {
			return ierr.NewError("credit limit exceeded").
				WithHint("Order exceeds the available credit").
				WithReportableDetails(map[string]any{
					"customer_id":      customerID,
					"amount":           amount,
					"available_credit": l.AvailableCredit,
				}).
				Mark(ierr.ErrCreditLimitExceeded)
		}
		l.UsedCredit = l.UsedCredit.Add(amount)
		l.Recompute()
		touchBase(ctx, &l.BaseModel)
		updated = copyCreditLine(l)
		return nil
	})
	if ierr.IsNotFound(err) {
		return nil, notFound("credit line for customer", customerID)
	}
	return updated, err
}

func (s *InMemoryCreditLineStore) DecrementUsage(ctx context.Context, customerID string, amount decimal.Decimal) (*creditline.CreditLine, error) {
	var updated *creditline.CreditLine
	err := s.InMemoryStore.MutateFirst(ctx, func(l *creditline.CreditLine) bool {
		return l.CustomerID == customerID && visible(ctx, l.BaseModel)
	}, func(l *creditline.CreditLine) error {
		l.UsedCredit = decimal.Max(decimal.Zero, l.UsedCredit.Sub(amount))
		l.Recompute()
		touchBase(ctx, &l.BaseModel)
		updated = copyCreditLine(l)
		return nil
	})
	if ierr.IsNotFound(err) {
		return nil, notFound("credit line for customer", customerID)
	}
	return updated, err
}

// InMemoryCreditTermsStore implements creditline.TermsRepository
type InMemoryCreditTermsStore struct {
	*InMemoryStore[*creditline.SentCreditTerms]
}

func NewInMemoryCreditTermsStore() *InMemoryCreditTermsStore {
	return &InMemoryCreditTermsStore{
		InMemoryStore: NewInMemoryStore[*creditline.SentCreditTerms](),
	}
}

func (s *InMemoryCreditTermsStore) Create(ctx context.Context, terms *creditline.SentCreditTerms) error {
	copied := *terms
	return s.InMemoryStore.CreateUnique(ctx, terms.ID, &copied, func(existing *creditline.SentCreditTerms) error {
		if existing.ApplicationID == terms.ApplicationID && existing.TenantID == terms.TenantID {
			return ierr.NewError("terms already sent for application").
				WithReportableDetails(map[string]any{"application_id": terms.ApplicationID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil
	})
}

func (s *InMemoryCreditTermsStore) GetByApplicationID(ctx context.Context, applicationID string) (*creditline.SentCreditTerms, error) {
	terms, ok := s.InMemoryStore.Find(ctx, func(t *creditline.SentCreditTerms) bool {
		return t.ApplicationID == applicationID && visible(ctx, t.BaseModel)
	})
	if !ok {
		return nil, notFound("credit terms for application", applicationID)
	}
	copied := *terms
	return &copied, nil
}

var (
	_ creditapplication.Repository = (*InMemoryCreditApplicationStore)(nil)
	_ creditline.Repository        = (*InMemoryCreditLineStore)(nil)
	_ creditline.TermsRepository   = (*InMemoryCreditTermsStore)(nil)
)
