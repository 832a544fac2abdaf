package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/pharmalink/ledger/internal/api/dto"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/testutil"
	"github.com/pharmalink/ledger/internal/types"
)

type RefundServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service RefundService
}

func TestRefundService(t *testing.T) {
	suite.Run(t, new(RefundServiceTestSuite))
}

func (s *RefundServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewRefundService(s.params)
	createTestCustomer(&s.BaseServiceTestSuite, "cust_refund", 0)
}

func (s *RefundServiceTestSuite) refund(orderID string, amount int64, method types.RefundMethod) (*dto.RefundResponse, error) {
	return s.service.CreateRefund(s.GetContext(), orderID, dto.CreateRefundRequest{
		Amount:       decimal.NewFromInt(amount),
		RefundMethod: method,
		Reason:       "returned goods",
	})
}

func (s *RefundServiceTestSuite) TestCardPartialThenFull() {
	o := storeSettledOrder(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(100), types.PaymentMethodCard)

	first, err := s.refund(o.ID, 40, types.RefundMethodOriginalPayment)
	s.Require().NoError(err)
	s.Equal(types.AdjustmentTypePartialRefund, first.Adjustment.AdjustmentType)
	s.Equal(types.PaymentStatusCompleted, first.Adjustment.PaymentStatus)
	s.Equal("re_test_1", first.Adjustment.GatewayTransactionID)
	s.True(decimal.NewFromInt(100).Equal(first.Adjustment.OriginalAmount))
	s.True(decimal.NewFromInt(60).Equal(first.Adjustment.NewAmount))

	refundable, err := s.service.GetRefundableAmount(s.GetContext(), o.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(60).Equal(refundable))

	_, err = s.refund(o.ID, 61, types.RefundMethodOriginalPayment)
	s.True(ierr.IsValidation(err))

	second, err := s.refund(o.ID, 60, types.RefundMethodOriginalPayment)
	s.Require().NoError(err)
	s.Equal(types.AdjustmentTypeFullRefund, second.Adjustment.AdjustmentType)

	refundable, err = s.service.GetRefundableAmount(s.GetContext(), o.ID)
	s.Require().NoError(err)
	s.True(refundable.IsZero())

	gw := s.GetGateway()
	s.Require().Equal(2, gw.RefundCount())
	s.Equal("pi_seed", gw.Refunds[0].TransactionID)
	s.NotEqual(gw.Refunds[0].IdempotencyKey, gw.Refunds[1].IdempotencyKey)

	s.Len(s.GetStores().ActivityRepo.ListByType(s.GetContext(), types.ActivityTypeRefundProcessed), 2)
}

func (s *RefundServiceTestSuite) TestDeclinedRefundIsMarkedFailed() {
	o := storeSettledOrder(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(100), types.PaymentMethodCard)
	s.GetGateway().DeclineRefund = true

	_, err := s.refund(o.ID, 30, types.RefundMethodOriginalPayment)
	s.True(ierr.IsGateway(err))

	adjs, err := NewPaymentAdjustmentService(s.params).ListAdjustments(s.GetContext(), o.ID)
	s.Require().NoError(err)
	s.Require().Len(adjs.Items, 1)
	s.Equal(types.PaymentStatusFailed, adjs.Items[0].PaymentStatus)
	s.NotEmpty(adjs.Items[0].FailureReason)
	s.Len(s.GetStores().ActivityRepo.ListByType(s.GetContext(), types.ActivityTypeRefundFailed), 1)

	refundable, err := s.service.GetRefundableAmount(s.GetContext(), o.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(100).Equal(refundable), "failed refunds release their reservation")
}

func (s *RefundServiceTestSuite) TestGatewayErrorIsMarkedFailed() {
	o := storeSettledOrder(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(100), types.PaymentMethodCard)
	s.GetGateway().RefundErr = errors.New("connection reset")

	_, err := s.refund(o.ID, 30, types.RefundMethodOriginalPayment)
	s.True(ierr.IsGateway(err))
	s.Len(s.GetStores().ActivityRepo.ListByType(s.GetContext(), types.ActivityTypeRefundFailed), 1)
}

func (s *RefundServiceTestSuite) TestCardOrderWithoutTransaction() {
	o := storeSettledOrder(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(100), types.PaymentMethodManual)
	o.ID = "ord_card_untracked"
	o.OrderNumber = "ORD-UNTRACKED"
	o.PaymentMethod = types.PaymentMethodCard
	s.Require().NoError(s.GetStores().OrderRepo.Create(s.GetContext(), o))

	_, err := s.refund(o.ID, 10, types.RefundMethodOriginalPayment)
	s.True(ierr.IsInvalidOperation(err))

	resp, err := s.refund(o.ID, 10, types.RefundMethodCreditMemo)
	s.Require().NoError(err)
	s.NotNil(resp.CreditMemo)
}

func (s *RefundServiceTestSuite) TestRefundAsCreditMemo() {
	o := storeSettledOrder(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(100), types.PaymentMethodCard)

	resp, err := s.refund(o.ID, 25, types.RefundMethodCreditMemo)
	s.Require().NoError(err)
	s.Require().NotNil(resp.CreditMemo)
	s.True(decimal.NewFromInt(25).Equal(resp.CreditMemo.Balance))
	s.Equal(resp.CreditMemo.ID, resp.Adjustment.CreditMemoID)
	s.Zero(s.GetGateway().RefundCount())

	adjs, err := NewPaymentAdjustmentService(s.params).ListAdjustments(s.GetContext(), o.ID)
	s.Require().NoError(err)
	s.Len(adjs.Items, 1, "the refund is the only adjustment on the order")

	balance, err := NewAccountTransactionService(s.params).GetBalance(s.GetContext(), "cust_refund")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(-25).Equal(balance))
}

func (s *RefundServiceTestSuite) TestCreditOrderRefundReleasesCredit() {
	createTestCreditLine(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(1000))
	_, err := NewCreditLineService(s.params).RecordCreditUsage(s.GetContext(), "cust_refund", decimal.NewFromInt(100))
	s.Require().NoError(err)
	o := storeSettledOrder(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(100), types.PaymentMethodCredit)

	_, err = s.refund(o.ID, 40, types.RefundMethodOriginalPayment)
	s.Require().NoError(err)

	line, err := s.GetStores().CreditLineRepo.GetByCustomerID(s.GetContext(), "cust_refund")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(60).Equal(line.UsedCredit))

	balance, err := NewAccountTransactionService(s.params).GetBalance(s.GetContext(), "cust_refund")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(-40).Equal(balance))
	s.Zero(s.GetGateway().RefundCount())
}

func (s *RefundServiceTestSuite) TestCreditOrderRefundLowersInvoice() {
	createTestCreditLine(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(1000))
	_, err := NewCreditLineService(s.params).RecordCreditUsage(s.GetContext(), "cust_refund", decimal.NewFromInt(100))
	s.Require().NoError(err)
	o := storeSettledOrder(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(100), types.PaymentMethodCredit)
	invoiceSvc := NewInvoiceService(s.params)
	inv, err := invoiceSvc.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{})
	s.Require().NoError(err)

	_, err = s.refund(o.ID, 40, types.RefundMethodOriginalPayment)
	s.Require().NoError(err)

	got, err := invoiceSvc.GetInvoice(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(40).Equal(got.CreditedAmount))
	s.True(decimal.NewFromInt(60).Equal(got.BalanceDue), "balance due = %s", got.BalanceDue)

	_, err = invoiceSvc.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount: decimal.NewFromInt(61),
	})
	s.True(ierr.IsValidation(err), "only the remaining 60 is payable")

	paid, err := invoiceSvc.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount: decimal.NewFromInt(60),
	})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPaid, paid.Invoice.InvoiceStatus)

	line, err := s.GetStores().CreditLineRepo.GetByCustomerID(s.GetContext(), "cust_refund")
	s.Require().NoError(err)
	s.True(line.UsedCredit.IsZero(), "used = %s", line.UsedCredit)

	balance, err := NewAccountTransactionService(s.params).GetBalance(s.GetContext(), "cust_refund")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(-100).Equal(balance))
}

func (s *RefundServiceTestSuite) TestRequestValidation() {
	o := storeSettledOrder(&s.BaseServiceTestSuite, "cust_refund", decimal.NewFromInt(100), types.PaymentMethodManual)

	_, err := s.refund(o.ID, 10, types.RefundMethod("cash"))
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateRefund(s.GetContext(), o.ID, dto.CreateRefundRequest{
		Amount:       decimal.NewFromInt(10),
		RefundMethod: types.RefundMethodOriginalPayment,
		Reason:       "   ",
	})
	s.True(ierr.IsValidation(err))

	_, err = s.refund("ord_missing", 10, types.RefundMethodOriginalPayment)
	s.True(ierr.IsNotFound(err))
}
