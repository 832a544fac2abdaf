package service

import (
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/creditline"
	"github.com/pharmalink/ledger/internal/domain/customer"
	"github.com/pharmalink/ledger/internal/domain/order"
	"github.com/pharmalink/ledger/internal/email"
	"github.com/pharmalink/ledger/internal/testutil"
	"github.com/pharmalink/ledger/internal/types"
)

// newTestServiceParams wires every in-memory store and fake from the base suite
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:                 s.GetLogger(),
		Config:                 s.GetConfig(),
		DB:                     s.GetDB(),
		CustomerRepo:           stores.CustomerRepo,
		CreditApplicationRepo:  stores.CreditApplicationRepo,
		CreditLineRepo:         stores.CreditLineRepo,
		CreditTermsRepo:        stores.CreditTermsRepo,
		OrderRepo:              stores.OrderRepo,
		DiscountCommitRepo:     stores.DiscountCommitRepo,
		OfferRepo:              stores.OfferRepo,
		RewardRepo:             stores.RewardRepo,
		InvoiceRepo:            stores.InvoiceRepo,
		InvoiceSequenceRepo:    stores.InvoiceSequenceRepo,
		CreditMemoRepo:         stores.CreditMemoRepo,
		PaymentAdjustmentRepo:  stores.PaymentAdjustmentRepo,
		AccountTransactionRepo: stores.AccountTransactionRepo,
		ActivityRepo:           stores.ActivityRepo,
		Locker:                 s.GetLocker(),
		PubSub:                 s.GetPublisher(),
		Gateway:                s.GetGateway(),
		Email:                  email.NewEmail(s.GetEmailSender(), true, "credit@pharmalink.test", s.GetLogger()),
	}
}

func createTestCustomer(s *testutil.BaseServiceTestSuite, id string, rewardPoints int64) *customer.Customer {
	c := &customer.Customer{
		ID:           id,
		Name:         "Riverside Pharmacy",
		Email:        "owner@riverside.test",
		RewardPoints: rewardPoints,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), c))
	return c
}

func createTestCreditLine(s *testutil.BaseServiceTestSuite, customerID string, limit decimal.Decimal) *creditline.CreditLine {
	line := &creditline.CreditLine{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_LINE),
		CustomerID:       customerID,
		CreditLimit:      limit,
		UsedCredit:       decimal.Zero,
		NetTerms:         30,
		InterestRate:     decimal.NewFromInt(3),
		CreditLineStatus: types.CreditLineStatusActive,
		PaymentScore:     types.DefaultPaymentScore,
		BaseModel:        types.GetDefaultBaseModel(s.GetContext()),
	}
	line.Recompute()
	s.Require().NoError(s.GetStores().CreditLineRepo.Create(s.GetContext(), line))
	return line
}

// storeSettledOrder inserts a paid order directly, bypassing checkout
func storeSettledOrder(s *testutil.BaseServiceTestSuite, customerID string, total decimal.Decimal, method types.PaymentMethod) *order.Order {
	o := &order.Order{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		OrderNumber:    types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_ORDER),
		CustomerID:     customerID,
		Subtotal:       total,
		Tax:            decimal.Zero,
		Shipping:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    total,
		Currency:       types.DefaultCurrency,
		PaymentMethod:  method,
		PaymentStatus:  types.PaymentStatusPaid,
		OrderStatus:    types.OrderStatusNew,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	if method == types.PaymentMethodCard {
		o.GatewayTransactionID = "pi_seed"
	}
	if method == types.PaymentMethodCredit {
		o.PaymentStatus = types.PaymentStatusPending
	}
	s.Require().NoError(s.GetStores().OrderRepo.Create(s.GetContext(), o))
	return o
}
