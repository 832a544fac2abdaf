package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/pharmalink/ledger/internal/domain/invoice"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/testutil"
	"github.com/pharmalink/ledger/internal/types"
)

func TestCalculatePenalty(t *testing.T) {
	tests := []struct {
		name  string
		total decimal.Decimal
		rate  decimal.Decimal
		days  int
		want  decimal.Decimal
	}{
		{"ten days at three percent", decimal.NewFromInt(1000), decimal.NewFromInt(3), 10, decimal.NewFromInt(10)},
		{"full month", decimal.NewFromInt(1000), decimal.NewFromInt(3), 30, decimal.NewFromInt(30)},
		{"rounded to cents", decimal.NewFromInt(333), decimal.NewFromInt(3), 7, decimal.RequireFromString("2.33")},
		{"not overdue", decimal.NewFromInt(1000), decimal.NewFromInt(3), 0, decimal.Zero},
		{"zero rate", decimal.NewFromInt(1000), decimal.Zero, 10, decimal.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePenalty(tt.total, tt.rate, tt.days)
			if !got.Equal(tt.want) {
				t.Fatalf("CalculatePenalty() = %s, want %s", got, tt.want)
			}
		})
	}
}

type PenaltyServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	service  PenaltyService
	testData struct {
		day     time.Time
		overdue *invoice.Invoice
		current *invoice.Invoice
	}
}

func TestPenaltyService(t *testing.T) {
	suite.Run(t, new(PenaltyServiceTestSuite))
}

func (s *PenaltyServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPenaltyService(newTestServiceParams(&s.BaseServiceTestSuite))

	now := time.Now().UTC()
	s.testData.day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	createTestCustomer(&s.BaseServiceTestSuite, "cust_penalty", 0)
	createTestCreditLine(&s.BaseServiceTestSuite, "cust_penalty", decimal.NewFromInt(5000))

	s.testData.overdue = s.storeInvoice("ord_late", s.testData.day.AddDate(0, 0, -10))
	s.testData.current = s.storeInvoice("ord_current", s.testData.day.AddDate(0, 0, 5))
}

func (s *PenaltyServiceTestSuite) storeInvoice(orderID string, due time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: fmt.Sprintf("INV-PEN-%s", orderID),
		OrderID:       orderID,
		CustomerID:    "cust_penalty",
		TotalAmount:   decimal.NewFromInt(1000),
		AmountPaid:    decimal.Zero,
		PenaltyAmount: decimal.Zero,
		Currency:      types.DefaultCurrency,
		DueDate:       due,
		InvoiceStatus: types.InvoiceStatusPending,
		PaymentMethod: types.PaymentMethodCredit,
		PaymentStatus: types.PaymentStatusPending,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	inv.RecomputeBalance()
	s.Require().NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *PenaltyServiceTestSuite) reload(id string) *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return inv
}

func (s *PenaltyServiceTestSuite) TestAccruesOnOverdueInvoices() {
	resp, err := s.service.CalculatePenalties(s.GetContext(), s.testData.day)
	s.Require().NoError(err)
	s.Equal(int64(1), resp.MarkedOverdue)
	s.Equal(1, resp.Accrued)
	s.True(decimal.NewFromInt(10).Equal(resp.TotalPenalty))

	late := s.reload(s.testData.overdue.ID)
	s.Equal(types.InvoiceStatusOverdue, late.InvoiceStatus)
	s.True(decimal.NewFromInt(10).Equal(late.PenaltyAmount))
	s.True(decimal.NewFromInt(1010).Equal(late.BalanceDue))
	s.Require().NotNil(late.LastPenaltyDate)
	s.True(s.testData.day.Equal(*late.LastPenaltyDate))

	current := s.reload(s.testData.current.ID)
	s.Equal(types.InvoiceStatusPending, current.InvoiceStatus)
	s.True(current.PenaltyAmount.IsZero())

	s.Len(s.GetStores().ActivityRepo.ListByType(s.GetContext(), types.ActivityTypePenaltyAccrued), 1)
}

func (s *PenaltyServiceTestSuite) TestSameDayRunIsIdempotent() {
	_, err := s.service.CalculatePenalties(s.GetContext(), s.testData.day)
	s.Require().NoError(err)

	resp, err := s.service.CalculatePenalties(s.GetContext(), s.testData.day.Add(6*time.Hour))
	s.Require().NoError(err)
	s.Zero(resp.Accrued)
	s.Equal(1, resp.Skipped)
	s.True(resp.TotalPenalty.IsZero())

	late := s.reload(s.testData.overdue.ID)
	s.True(decimal.NewFromInt(10).Equal(late.PenaltyAmount))
}

func (s *PenaltyServiceTestSuite) TestNextDayAccruesDelta() {
	_, err := s.service.CalculatePenalties(s.GetContext(), s.testData.day)
	s.Require().NoError(err)

	resp, err := s.service.CalculatePenalties(s.GetContext(), s.testData.day.AddDate(0, 0, 1))
	s.Require().NoError(err)
	s.Equal(1, resp.Accrued)
	s.True(decimal.NewFromInt(1).Equal(resp.TotalPenalty), "only the new day is added to the run total")

	late := s.reload(s.testData.overdue.ID)
	s.True(decimal.NewFromInt(11).Equal(late.PenaltyAmount))
	s.True(decimal.NewFromInt(1011).Equal(late.BalanceDue))
}

func (s *PenaltyServiceTestSuite) TestPaidInvoiceIsNotPenalised() {
	paid := s.storeInvoice("ord_paid", s.testData.day.AddDate(0, 0, -20))
	paid.AmountPaid = paid.TotalAmount
	paid.InvoiceStatus = types.InvoiceStatusPaid
	paid.RecomputeBalance()
	s.Require().NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), paid))

	resp, err := s.service.CalculatePenalties(s.GetContext(), s.testData.day)
	s.Require().NoError(err)
	s.Equal(1, resp.Evaluated)
	s.True(s.reload(paid.ID).PenaltyAmount.IsZero())
}

func (s *PenaltyServiceTestSuite) TestConcurrentRunIsRejected() {
	ctx := s.GetContext()
	key := fmt.Sprintf("%s:%s:%s", types.LockScopePenaltyRun, types.GetTenantID(ctx), s.testData.day.Format(time.DateOnly))
	lock, err := s.GetLocker().Obtain(ctx, key, time.Minute)
	s.Require().NoError(err)
	defer func() { _ = lock.Release(context.Background()) }()

	_, err = s.service.CalculatePenalties(ctx, s.testData.day)
	s.True(ierr.IsConcurrencyConflict(err))
	s.True(s.reload(s.testData.overdue.ID).PenaltyAmount.IsZero())
}
