package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/order"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/testutil"
	"github.com/pharmalink/ledger/internal/types"
)

func TestClassifyAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		original string
		updated  string
		wantType types.AdjustmentType
		wantDiff string
	}{
		{"increase", "100", "125.50", types.AdjustmentTypeAdditionalPayment, "25.5"},
		{"decrease", "100", "60", types.AdjustmentTypePartialRefund, "-40"},
		{"equal", "100", "100.00", types.AdjustmentTypeNoChange, "0"},
		{"sub cent noise", "100", "100.004", types.AdjustmentTypeNoChange, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAdjustment(decimal.RequireFromString(tt.original), decimal.RequireFromString(tt.updated))
			if got.AdjustmentType != tt.wantType {
				t.Fatalf("type = %s, want %s", got.AdjustmentType, tt.wantType)
			}
			if !got.DifferenceAmount.Equal(decimal.RequireFromString(tt.wantDiff)) {
				t.Fatalf("difference = %s, want %s", got.DifferenceAmount, tt.wantDiff)
			}
		})
	}
}

type PaymentAdjustmentServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service PaymentAdjustmentService
	order   *order.Order
}

func TestPaymentAdjustmentService(t *testing.T) {
	suite.Run(t, new(PaymentAdjustmentServiceTestSuite))
}

func (s *PaymentAdjustmentServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewPaymentAdjustmentService(s.params)
	createTestCustomer(&s.BaseServiceTestSuite, "cust_adjust", 0)
	s.order = storeSettledOrder(&s.BaseServiceTestSuite, "cust_adjust", decimal.NewFromInt(200), types.PaymentMethodManual)
}

func (s *PaymentAdjustmentServiceTestSuite) TestAdditionalPaymentDebitsAccount() {
	resp, err := s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
		NewAmount: decimal.NewFromInt(230),
		Reason:    "late line item",
	})
	s.Require().NoError(err)
	s.Equal(types.AdjustmentTypeAdditionalPayment, resp.AdjustmentType)
	s.True(decimal.NewFromInt(30).Equal(resp.DifferenceAmount))
	s.Equal(types.PaymentStatusPending, resp.PaymentStatus)
	s.Equal(fmt.Sprintf("ADJ-%d-1", time.Now().UTC().Year()), resp.AdjustmentNumber)
	s.Contains(resp.Description, "30.00")

	balance, err := NewAccountTransactionService(s.params).GetBalance(s.GetContext(), "cust_adjust")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(30).Equal(balance))

	s.Len(s.GetStores().ActivityRepo.ListByType(s.GetContext(), types.ActivityTypePaymentAdjusted), 1)
}

func (s *PaymentAdjustmentServiceTestSuite) TestReductionIsRecordedWithoutLedgerEntry() {
	resp, err := s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
		NewAmount:            decimal.NewFromInt(150),
		Reason:               "short shipped",
		GatewayTransactionID: "re_manual_1",
	})
	s.Require().NoError(err)
	s.Equal(types.AdjustmentTypePartialRefund, resp.AdjustmentType)
	s.Equal(types.PaymentStatusCompleted, resp.PaymentStatus)

	balance, err := NewAccountTransactionService(s.params).GetBalance(s.GetContext(), "cust_adjust")
	s.Require().NoError(err)
	s.True(balance.IsZero())
}

func (s *PaymentAdjustmentServiceTestSuite) TestNoChangeIsRejected() {
	_, err := s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
		NewAmount: decimal.NewFromInt(200),
		Reason:    "recheck",
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
		NewAmount: decimal.NewFromInt(210),
	})
	s.True(ierr.IsValidation(err), "reason is required")

	_, err = s.service.CreateAdjustment(s.GetContext(), "ord_missing", dto.CreateAdjustmentRequest{
		NewAmount: decimal.NewFromInt(210),
		Reason:    "x",
	})
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentAdjustmentServiceTestSuite) TestNumbersAreSequential() {
	for i, amount := range []int64{210, 220, 190} {
		resp, err := s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
			NewAmount: decimal.NewFromInt(amount),
			Reason:    "revision",
		})
		s.Require().NoError(err)
		s.Equal(fmt.Sprintf("ADJ-%d-%d", time.Now().UTC().Year(), i+1), resp.AdjustmentNumber)
	}

	list, err := s.service.ListAdjustments(s.GetContext(), s.order.ID)
	s.Require().NoError(err)
	s.Len(list.Items, 3)
}

func (s *PaymentAdjustmentServiceTestSuite) TestRevisionsChainFromLatestAmount() {
	first, err := s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
		NewAmount: decimal.NewFromInt(220),
		Reason:    "added case",
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(20).Equal(first.DifferenceAmount))

	second, err := s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
		NewAmount: decimal.NewFromInt(230),
		Reason:    "added another case",
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(220).Equal(second.OriginalAmount))
	s.True(decimal.NewFromInt(10).Equal(second.DifferenceAmount))

	balance, err := NewAccountTransactionService(s.params).GetBalance(s.GetContext(), "cust_adjust")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(30).Equal(balance), "balance = %s", balance)

	_, err = s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
		NewAmount: decimal.NewFromInt(230),
		Reason:    "recheck",
	})
	s.True(ierr.IsValidation(err), "230 is already the current amount")

	third, err := s.service.CreateAdjustment(s.GetContext(), s.order.ID, dto.CreateAdjustmentRequest{
		NewAmount: decimal.NewFromInt(200),
		Reason:    "case returned",
	})
	s.Require().NoError(err)
	s.Equal(types.AdjustmentTypePartialRefund, third.AdjustmentType)
	s.True(decimal.NewFromInt(-30).Equal(third.DifferenceAmount))
}
