package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/activity"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/testutil"
	"github.com/pharmalink/ledger/internal/types"
)

// LedgerServiceTestSuite covers the customer facing balances: the account
// ledger, the credit line, reward points and offers
type LedgerServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	params ServiceParams
}

func TestLedgerServices(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	createTestCustomer(&s.BaseServiceTestSuite, "cust_ledger", 0)
}

func (s *LedgerServiceTestSuite) TestRunningBalance() {
	svc := NewAccountTransactionService(s.params)
	ctx := s.GetContext()

	balance, err := svc.GetBalance(ctx, "cust_ledger")
	s.Require().NoError(err)
	s.True(balance.IsZero())

	steps := []struct {
		txnType types.AccountTransactionType
		amount  string
		want    string
	}{
		{types.AccountTransactionTypeDebit, "120.00", "120"},
		{types.AccountTransactionTypeCredit, "20.005", "99.99"},
		{types.AccountTransactionTypeCredit, "150", "-50.01"},
		{types.AccountTransactionTypeDebit, "50.01", "0"},
	}
	for i, step := range steps {
		txn, err := svc.AppendTransaction(ctx, dto.AccountTransactionRequest{
			CustomerID:    "cust_ledger",
			Type:          step.txnType,
			Amount:        decimal.RequireFromString(step.amount),
			ReferenceType: types.AccountReferenceTypeOrder,
			ReferenceID:   "ord_1",
		})
		s.Require().NoError(err)
		s.Equal(int64(i+1), txn.Seq)
		s.True(decimal.RequireFromString(step.want).Equal(txn.RunningBalance),
			"step %d: got %s want %s", i, txn.RunningBalance, step.want)
	}

	list, err := svc.ListTransactions(ctx, "cust_ledger", nil)
	s.Require().NoError(err)
	s.Len(list.Items, 4)
	s.True(list.Balance.IsZero())
}

func (s *LedgerServiceTestSuite) TestAppendValidation() {
	svc := NewAccountTransactionService(s.params)

	_, err := svc.AppendTransaction(s.GetContext(), dto.AccountTransactionRequest{
		CustomerID: "cust_ledger",
		Type:       types.AccountTransactionTypeDebit,
		Amount:     decimal.Zero,
	})
	s.True(ierr.IsValidation(err))

	_, err = svc.AppendTransaction(s.GetContext(), dto.AccountTransactionRequest{
		CustomerID: "cust_ledger",
		Type:       types.AccountTransactionType("transfer"),
		Amount:     decimal.NewFromInt(1),
	})
	s.True(ierr.IsValidation(err))
}

func (s *LedgerServiceTestSuite) TestCreditUsageAndRepayment() {
	createTestCreditLine(&s.BaseServiceTestSuite, "cust_ledger", decimal.NewFromInt(1000))
	svc := NewCreditLineService(s.params)
	ctx := s.GetContext()

	line, err := svc.RecordCreditUsage(ctx, "cust_ledger", decimal.NewFromInt(600))
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(400).Equal(line.AvailableCredit))

	_, err = svc.RecordCreditUsage(ctx, "cust_ledger", decimal.NewFromInt(401))
	s.True(ierr.IsCreditLimitExceeded(err))

	line, err = svc.RecordCreditUsage(ctx, "cust_ledger", decimal.NewFromInt(400))
	s.Require().NoError(err)
	s.True(line.AvailableCredit.IsZero())

	line, err = svc.RecordCreditRepayment(ctx, "cust_ledger", decimal.NewFromInt(1500))
	s.Require().NoError(err)
	s.True(line.UsedCredit.IsZero(), "used credit floors at zero")
	s.True(decimal.NewFromInt(1000).Equal(line.AvailableCredit))

	_, err = svc.RecordCreditUsage(ctx, "cust_unknown", decimal.NewFromInt(1))
	s.True(ierr.IsInvalidOperation(err))

	_, err = svc.RecordCreditUsage(ctx, "cust_ledger", decimal.NewFromInt(-5))
	s.True(ierr.IsValidation(err))
}

func (s *LedgerServiceTestSuite) TestRewardPoints() {
	svc := NewRewardService(s.params)
	ctx := s.GetContext()

	s.Equal(int64(95), PointsEarned(decimal.RequireFromString("95.99"), decimal.NewFromInt(1)))
	s.Zero(PointsEarned(decimal.Zero, decimal.NewFromInt(1)))
	s.True(decimal.RequireFromString("1.23").Equal(PointsValue(123, decimal.RequireFromString("0.01"))))

	earned, err := svc.AwardPoints(ctx, "cust_ledger", "ord_1", decimal.RequireFromString("250.75"))
	s.Require().NoError(err)
	s.Equal(int64(250), earned)

	_, err = svc.RedeemPoints(ctx, "cust_ledger", dto.RedeemRewardRequest{Points: 300})
	s.True(ierr.IsInsufficientBalance(err))

	redemption, err := svc.RedeemPoints(ctx, "cust_ledger", dto.RedeemRewardRequest{Points: 100})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(1).Equal(redemption.Value))
	s.Equal(types.RewardRedemptionStatusRedeemed, redemption.RedemptionStatus)

	ledger, err := svc.GetLedger(ctx, "cust_ledger")
	s.Require().NoError(err)
	s.Equal(int64(150), ledger.Balance)
	s.Len(ledger.Items, 2)
}

func (s *LedgerServiceTestSuite) TestOfferCodesAreUnique() {
	svc := NewOfferService(s.params)
	req := dto.CreateOfferRequest{
		Code:          "WELCOME5",
		DiscountType:  types.OfferDiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(5),
	}

	created, err := svc.CreateOffer(s.GetContext(), req)
	s.Require().NoError(err)

	got, err := svc.GetOffer(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Equal("WELCOME5", got.Code)

	_, err = svc.CreateOffer(s.GetContext(), req)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *LedgerServiceTestSuite) TestCustomerLifecycle() {
	svc := NewCustomerService(s.params)

	created, err := svc.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:  "Harbor Drug",
		Email: "Orders@Harbor.test",
	})
	s.Require().NoError(err)
	s.Equal("orders@harbor.test", created.Email)

	got, err := svc.GetCustomer(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Equal("Harbor Drug", got.Name)

	_, err = svc.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{Email: "x@y.test"})
	s.True(ierr.IsValidation(err))

	_, err = svc.GetCustomer(s.GetContext(), "")
	s.True(ierr.IsValidation(err))
}

func (s *LedgerServiceTestSuite) TestActivityIsPublished() {
	topic := lo.Ternary(s.GetConfig().Kafka.ActivityTopic != "", s.GetConfig().Kafka.ActivityTopic, types.ActivityTopic)
	ctx, cancel := context.WithTimeout(s.GetContext(), 5*time.Second)
	defer cancel()

	messages, err := s.GetPublisher().Subscribe(ctx, topic)
	s.Require().NoError(err)

	NewActivityService(s.params).LogActivity(s.GetContext(), dto.ActivityRequest{
		OrderID:     "ord_audit",
		Type:        types.ActivityTypeOrderSettled,
		Description: "order settled",
		Metadata:    map[string]interface{}{"total": "10.00"},
	})

	select {
	case msg := <-messages:
		msg.Ack()
		var got activity.Activity
		s.Require().NoError(json.Unmarshal(msg.Payload, &got))
		s.Equal("ord_audit", got.OrderID)
		s.Equal(types.ActivityTypeOrderSettled, got.ActivityType)
		s.Equal(string(types.ActivityTypeOrderSettled), msg.Metadata.Get("activity_type"))
	case <-ctx.Done():
		s.Fail("activity was not published")
	}

	list, err := NewActivityService(s.params).ListActivities(s.GetContext(), "ord_audit")
	s.Require().NoError(err)
	s.Len(list.Items, 1)
}
