package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/customer"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/order"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/testutil"
	"github.com/pharmalink/ledger/internal/types"
)

type InvoiceServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	params   ServiceParams
	service  InvoiceService
	testData struct {
		customer *customer.Customer
		now      time.Time
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (s *InvoiceServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewInvoiceService(s.params)
	s.testData.customer = createTestCustomer(&s.BaseServiceTestSuite, "cust_invoice", 0)
	s.testData.now = time.Now().UTC()
}

func (s *InvoiceServiceTestSuite) newOrder(total int64, method types.PaymentMethod, status types.PaymentStatus) *order.Order {
	o := &order.Order{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		OrderNumber:    types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_ORDER),
		CustomerID:     s.testData.customer.ID,
		Subtotal:       decimal.NewFromInt(total),
		Tax:            decimal.Zero,
		Shipping:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.NewFromInt(total),
		Currency:       types.DefaultCurrency,
		PaymentMethod:  method,
		PaymentStatus:  status,
		OrderStatus:    types.OrderStatusNew,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	o.CreatedAt = s.testData.now
	s.Require().NoError(s.GetStores().OrderRepo.Create(s.GetContext(), o))
	return o
}

func (s *InvoiceServiceTestSuite) TestNextInvoiceNumber() {
	first, err := s.service.NextInvoiceNumber(s.GetContext(), 2026)
	s.Require().NoError(err)
	s.Equal("INV-2026-000001", first)

	second, err := s.service.NextInvoiceNumber(s.GetContext(), 2026)
	s.Require().NoError(err)
	s.Equal("INV-2026-000002", second)

	other, err := s.service.NextInvoiceNumber(s.GetContext(), 2027)
	s.Require().NoError(err)
	s.Equal("INV-2027-000001", other, "sequences restart every year")
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceForUnpaidOrder() {
	o := s.newOrder(250, types.PaymentMethodManual, types.PaymentStatusPending)

	inv, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{
		PreDiscountSubtotal: o.Subtotal,
		TaxAmount:           o.Tax,
	})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
	s.True(decimal.NewFromInt(250).Equal(inv.BalanceDue))
	s.True(inv.AmountPaid.IsZero())
	s.Nil(inv.PaidAt)
	s.Equal(s.testData.now.AddDate(0, 0, 30).Unix(), inv.DueDate.Unix())
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceForPaidOrder() {
	o := s.newOrder(80, types.PaymentMethodCard, types.PaymentStatusPaid)

	inv, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{PreDiscountSubtotal: o.Subtotal})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.True(inv.BalanceDue.IsZero())
	s.NotNil(inv.PaidAt)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceIsIdempotentPerOrder() {
	o := s.newOrder(100, types.PaymentMethodManual, types.PaymentStatusPending)

	first, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{})
	s.Require().NoError(err)
	second, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(first.InvoiceNumber, second.InvoiceNumber)
}

func (s *InvoiceServiceTestSuite) TestNumberCollisionIsRetried() {
	year := s.testData.now.Year()
	taken := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: fmt.Sprintf("INV-%d-000001", year),
		OrderID:       "ord_imported",
		CustomerID:    s.testData.customer.ID,
		TotalAmount:   decimal.NewFromInt(10),
		BalanceDue:    decimal.NewFromInt(10),
		Currency:      types.DefaultCurrency,
		InvoiceStatus: types.InvoiceStatusPending,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), taken))

	o := s.newOrder(100, types.PaymentMethodManual, types.PaymentStatusPending)
	inv, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{})
	s.Require().NoError(err)
	s.Equal(fmt.Sprintf("INV-%d-000002", year), inv.InvoiceNumber)
}

func (s *InvoiceServiceTestSuite) TestCustomNetTerms() {
	o := s.newOrder(100, types.PaymentMethodCredit, types.PaymentStatusPending)
	terms := 60

	inv, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{NetTerms: &terms})
	s.Require().NoError(err)
	s.Equal(s.testData.now.AddDate(0, 0, 60).Unix(), inv.DueDate.Unix())
}

func (s *InvoiceServiceTestSuite) TestRecordPayment() {
	o := s.newOrder(100, types.PaymentMethodManual, types.PaymentStatusPending)
	inv, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{})
	s.Require().NoError(err)

	resp, err := s.service.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount:    decimal.NewFromInt(40),
		Reference: "chq 1001",
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(60).Equal(resp.Invoice.BalanceDue))
	s.Equal(types.InvoiceStatusPending, resp.Invoice.InvoiceStatus)

	_, err = s.service.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount: decimal.NewFromInt(61),
	})
	s.True(ierr.IsValidation(err), "payments cannot exceed the balance due")

	resp, err = s.service.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount: decimal.NewFromInt(60),
	})
	s.Require().NoError(err)
	s.True(resp.Invoice.BalanceDue.IsZero())
	s.Equal(types.InvoiceStatusPaid, resp.Invoice.InvoiceStatus)
	s.NotNil(resp.Invoice.PaidAt)

	_, err = s.service.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount: decimal.NewFromInt(1),
	})
	s.True(ierr.IsInvalidOperation(err))

	txns, err := NewAccountTransactionService(s.params).ListTransactions(s.GetContext(), s.testData.customer.ID, nil)
	s.Require().NoError(err)
	s.Len(txns.Items, 2)
	s.True(decimal.NewFromInt(-100).Equal(txns.Balance))
}

func (s *InvoiceServiceTestSuite) TestRecordPaymentReleasesCredit() {
	createTestCreditLine(&s.BaseServiceTestSuite, s.testData.customer.ID, decimal.NewFromInt(500))
	_, err := NewCreditLineService(s.params).RecordCreditUsage(s.GetContext(), s.testData.customer.ID, decimal.NewFromInt(100))
	s.Require().NoError(err)

	o := s.newOrder(100, types.PaymentMethodCredit, types.PaymentStatusPending)
	inv, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{})
	s.Require().NoError(err)

	_, err = s.service.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount: decimal.NewFromInt(100),
	})
	s.Require().NoError(err)

	line, err := s.GetStores().CreditLineRepo.GetByCustomerID(s.GetContext(), s.testData.customer.ID)
	s.Require().NoError(err)
	s.True(line.UsedCredit.IsZero())
	s.True(decimal.NewFromInt(500).Equal(line.AvailableCredit))

	s.Len(s.GetStores().ActivityRepo.ListByType(s.GetContext(), types.ActivityTypeInvoicePaymentRecorded), 1)
}

func (s *InvoiceServiceTestSuite) TestRecordPaymentReleasesPrincipalOnly() {
	createTestCreditLine(&s.BaseServiceTestSuite, s.testData.customer.ID, decimal.NewFromInt(500))
	_, err := NewCreditLineService(s.params).RecordCreditUsage(s.GetContext(), s.testData.customer.ID, decimal.NewFromInt(150))
	s.Require().NoError(err)

	o := s.newOrder(100, types.PaymentMethodCredit, types.PaymentStatusPending)
	inv, err := s.service.CreateInvoice(s.GetContext(), o, dto.CreateInvoiceParams{})
	s.Require().NoError(err)

	inv.InvoiceStatus = types.InvoiceStatusOverdue
	inv.PenaltyAmount = decimal.NewFromInt(10)
	inv.RecomputeBalance()
	s.Require().NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	_, err = s.service.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount: decimal.NewFromInt(60),
	})
	s.Require().NoError(err)

	line, err := s.GetStores().CreditLineRepo.GetByCustomerID(s.GetContext(), s.testData.customer.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(90).Equal(line.UsedCredit), "used = %s", line.UsedCredit)

	resp, err := s.service.RecordPayment(s.GetContext(), inv.ID, dto.RecordInvoicePaymentRequest{
		Amount: decimal.NewFromInt(50),
	})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPaid, resp.Invoice.InvoiceStatus)

	line, err = s.GetStores().CreditLineRepo.GetByCustomerID(s.GetContext(), s.testData.customer.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(50).Equal(line.UsedCredit), "the 10 of penalty is not released, used = %s", line.UsedCredit)
}
