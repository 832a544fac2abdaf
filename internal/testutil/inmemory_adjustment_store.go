package testutil

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/accounttransaction"
	"github.com/pharmalink/ledger/internal/domain/activity"
	"github.com/pharmalink/ledger/internal/domain/creditmemo"
	"github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// InMemoryCreditMemoStore implements creditmemo.Repository
type InMemoryCreditMemoStore struct {
	memos        *InMemoryStore[*creditmemo.CreditMemo]
	applications *InMemoryStore[*creditmemo.Application]
}

func NewInMemoryCreditMemoStore() *InMemoryCreditMemoStore {
	return &InMemoryCreditMemoStore{
		memos:        NewInMemoryStore[*creditmemo.CreditMemo](),
		applications: NewInMemoryStore[*creditmemo.Application](),
	}
}

func copyCreditMemo(m *creditmemo.CreditMemo) *creditmemo.CreditMemo {
	if m == nil {
		return nil
	}
	copied := *m
	return &copied
}

func (s *InMemoryCreditMemoStore) Create(ctx context.Context, m *creditmemo.CreditMemo) error {
	return s.memos.CreateUnique(ctx, m.ID, copyCreditMemo(m), func(existing *creditmemo.CreditMemo) error {
		if existing.MemoNumber == m.MemoNumber {
			return ierr.NewError("memo number already exists").
				WithReportableDetails(map[string]any{"memo_number": m.MemoNumber}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil
	})
}

func (s *InMemoryCreditMemoStore) Get(ctx context.Context, id string) (*creditmemo.CreditMemo, error) {
	m, err := s.memos.Get(ctx, id)
	if err != nil || !visible(ctx, m.BaseModel) {
		return nil, notFound("credit memo", id)
	}
	return copyCreditMemo(m), nil
}

func (s *InMemoryCreditMemoStore) ListByCustomerID(ctx context.Context, customerID string) ([]*creditmemo.CreditMemo, error) {
	memos, err := s.memos.List(ctx, nil, func(ctx context.Context, m *creditmemo.CreditMemo, _ interface{}) bool {
		return m.CustomerID == customerID && visible(ctx, m.BaseModel)
	}, func(a, b *creditmemo.CreditMemo) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(memos, func(m *creditmemo.CreditMemo, _ int) *creditmemo.CreditMemo {
		return copyCreditMemo(m)
	}), nil
}

func (s *InMemoryCreditMemoStore) Apply(ctx context.Context, id string, amount decimal.Decimal) (*creditmemo.CreditMemo, error) {
	var updated *creditmemo.CreditMemo
	err := s.memos.Mutate(ctx, id, func(m *creditmemo.CreditMemo) error {
		if amount.GreaterThan(m.Balance) {
			return ierr.NewError("credit memo balance is insufficient").
				WithHint("Credit memo does not have enough remaining balance").
				WithReportableDetails(map[string]any{
					"memo_id": id,
					"balance": m.Balance,
					"amount":  amount,
				}).
				Mark(ierr.ErrInsufficientBalance)
		}
		m.Balance = m.Balance.Sub(amount)
		m.AppliedAmount = m.AppliedAmount.Add(amount)
		m.MemoStatus = creditmemo.StatusFor(m.Amount, m.Balance)
		touchBase(ctx, &m.BaseModel)
		updated = copyCreditMemo(m)
		return nil
	})
	if ierr.IsNotFound(err) {
		return nil, notFound("credit memo", id)
	}
	return updated, err
}

func (s *InMemoryCreditMemoStore) CreateApplication(ctx context.Context, app *creditmemo.Application) error {
	copied := *app
	return s.applications.Create(ctx, app.ID, &copied)
}

func (s *InMemoryCreditMemoStore) ListApplications(ctx context.Context, memoID string) ([]*creditmemo.Application, error) {
	apps, err := s.applications.List(ctx, nil, func(ctx context.Context, a *creditmemo.Application, _ interface{}) bool {
		return a.MemoID == memoID && visible(ctx, a.BaseModel)
	}, nil)
	if err != nil {
		return nil, err
	}
	return lo.Map(apps, func(a *creditmemo.Application, _ int) *creditmemo.Application {
		copied := *a
		return &copied
	}), nil
}

func (s *InMemoryCreditMemoStore) Clear() {
	s.memos.Clear()
	s.applications.Clear()
}

// InMemoryPaymentAdjustmentStore implements paymentadjustment.Repository
type InMemoryPaymentAdjustmentStore struct {
	*InMemoryStore[*paymentadjustment.PaymentAdjustment]
}

func NewInMemoryPaymentAdjustmentStore() *InMemoryPaymentAdjustmentStore {
	return &InMemoryPaymentAdjustmentStore{
		InMemoryStore: NewInMemoryStore[*paymentadjustment.PaymentAdjustment](),
	}
}

func copyAdjustment(a *paymentadjustment.PaymentAdjustment) *paymentadjustment.PaymentAdjustment {
	if a == nil {
		return nil
	}
	copied := *a
	return &copied
}

func (s *InMemoryPaymentAdjustmentStore) Create(ctx context.Context, adj *paymentadjustment.PaymentAdjustment) error {
	return s.InMemoryStore.CreateUnique(ctx, adj.ID, copyAdjustment(adj), func(existing *paymentadjustment.PaymentAdjustment) error {
		if existing.AdjustmentNumber == adj.AdjustmentNumber && existing.TenantID == adj.TenantID {
			return ierr.NewError("adjustment number already exists").
				WithReportableDetails(map[string]any{"adjustment_number": adj.AdjustmentNumber}).
				Mark(ierr.ErrConcurrencyConflict)
		}
		return nil
	})
}

func (s *InMemoryPaymentAdjustmentStore) Get(ctx context.Context, id string) (*paymentadjustment.PaymentAdjustment, error) {
	adj, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !visible(ctx, adj.BaseModel) {
		return nil, notFound("payment adjustment", id)
	}
	return copyAdjustment(adj), nil
}

func (s *InMemoryPaymentAdjustmentStore) Update(ctx context.Context, adj *paymentadjustment.PaymentAdjustment) error {
	touchBase(ctx, &adj.BaseModel)
	if err := s.InMemoryStore.Update(ctx, adj.ID, copyAdjustment(adj)); err != nil {
		return notFound("payment adjustment", adj.ID)
	}
	return nil
}

func (s *InMemoryPaymentAdjustmentStore) ListByOrderID(ctx context.Context, orderID string) ([]*paymentadjustment.PaymentAdjustment, error) {
	adjs, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, a *paymentadjustment.PaymentAdjustment, _ interface{}) bool {
		return a.OrderID == orderID && visible(ctx, a.BaseModel)
	}, nil)
	if err != nil {
		return nil, err
	}
	return lo.Map(adjs, func(a *paymentadjustment.PaymentAdjustment, _ int) *paymentadjustment.PaymentAdjustment {
		return copyAdjustment(a)
	}), nil
}

// InMemoryAccountTransactionStore implements accounttransaction.Repository
type InMemoryAccountTransactionStore struct {
	*InMemoryStore[*accounttransaction.AccountTransaction]
}

func NewInMemoryAccountTransactionStore() *InMemoryAccountTransactionStore {
	return &InMemoryAccountTransactionStore{
		InMemoryStore: NewInMemoryStore[*accounttransaction.AccountTransaction](),
	}
}

func (s *InMemoryAccountTransactionStore) Create(ctx context.Context, txn *accounttransaction.AccountTransaction) error {
	copied := *txn
	return s.InMemoryStore.Create(ctx, txn.ID, &copied)
}

func (s *InMemoryAccountTransactionStore) GetLatest(ctx context.Context, customerID string) (*accounttransaction.AccountTransaction, error) {
	txns, err := s.ListByCustomerID(ctx, customerID, types.NewNoLimitQueryFilter())
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, notFound("account transaction for customer", customerID)
	}
	return txns[0], nil
}

// ListByCustomerID returns newest first, like the SQL repository
func (s *InMemoryAccountTransactionStore) ListByCustomerID(ctx context.Context, customerID string, filter *types.QueryFilter) ([]*accounttransaction.AccountTransaction, error) {
	txns, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, t *accounttransaction.AccountTransaction, _ interface{}) bool {
		return t.CustomerID == customerID && visible(ctx, t.BaseModel)
	}, func(a, b *accounttransaction.AccountTransaction) bool {
		return a.Seq > b.Seq
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(paginate(txns, filter), func(t *accounttransaction.AccountTransaction, _ int) *accounttransaction.AccountTransaction {
		copied := *t
		return &copied
	}), nil
}

// InMemoryActivityStore implements activity.Repository
type InMemoryActivityStore struct {
	*InMemoryStore[*activity.Activity]
}

func NewInMemoryActivityStore() *InMemoryActivityStore {
	return &InMemoryActivityStore{
		InMemoryStore: NewInMemoryStore[*activity.Activity](),
	}
}

func (s *InMemoryActivityStore) Create(ctx context.Context, a *activity.Activity) error {
	copied := *a
	return s.InMemoryStore.Create(ctx, a.ID, &copied)
}

func (s *InMemoryActivityStore) ListByOrderID(ctx context.Context, orderID string) ([]*activity.Activity, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, a *activity.Activity, _ interface{}) bool {
		return a.OrderID == orderID && a.TenantID == types.GetTenantID(ctx)
	}, nil)
}

// ListByType returns activities of one type across orders, for assertions
func (s *InMemoryActivityStore) ListByType(ctx context.Context, activityType types.ActivityType) []*activity.Activity {
	items, _ := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, a *activity.Activity, _ interface{}) bool {
		return a.ActivityType == activityType
	}, nil)
	return items
}

var (
	_ creditmemo.Repository         = (*InMemoryCreditMemoStore)(nil)
	_ paymentadjustment.Repository  = (*InMemoryPaymentAdjustmentStore)(nil)
	_ accounttransaction.Repository = (*InMemoryAccountTransactionStore)(nil)
	_ activity.Repository           = (*InMemoryActivityStore)(nil)
)
