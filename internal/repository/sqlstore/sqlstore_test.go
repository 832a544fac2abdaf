package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pharmalink/ledger/internal/cache"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	"github.com/pharmalink/ledger/internal/domain/creditmemo"
	"github.com/pharmalink/ledger/internal/domain/customer"
	"github.com/pharmalink/ledger/internal/domain/discount"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/offer"
	"github.com/pharmalink/ledger/internal/domain/reward"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

type SQLStoreSuite struct {
	suite.Suite
	ctx    context.Context
	client *postgres.Client
	log    *logger.Logger
}

func TestSQLStore(t *testing.T) {
	suite.Run(t, new(SQLStoreSuite))
}

func (s *SQLStoreSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", types.GenerateUUID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	s.Require().NoError(err)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.log = logger.NewNopLogger()
	s.client = postgres.NewClientFromDB(db, types.DatabaseDriverSQLite, s.log)
	s.Require().NoError(Migrate(s.client))

	s.ctx = types.SetTenantID(context.Background(), "tenant_test")
}

func (s *SQLStoreSuite) TearDownTest() {
	_ = s.client.Close()
}

func (s *SQLStoreSuite) newLine(customerID string, limit int64) *creditline.CreditLine {
	line := &creditline.CreditLine{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_LINE),
		CustomerID:       customerID,
		CreditLimit:      decimal.NewFromInt(limit),
		UsedCredit:       decimal.Zero,
		NetTerms:         30,
		InterestRate:     decimal.NewFromInt(3),
		CreditLineStatus: types.CreditLineStatusActive,
		PaymentScore:     types.DefaultPaymentScore,
		BaseModel:        types.GetDefaultBaseModel(s.ctx),
	}
	line.Recompute()
	s.Require().NoError(NewCreditLineRepository(s.client, s.log).Create(s.ctx, line))
	return line
}

func (s *SQLStoreSuite) TestCreditLine_IncrementUsage() {
	repo := NewCreditLineRepository(s.client, s.log)
	s.newLine("cust_1", 300)

	line, err := repo.IncrementUsage(s.ctx, "cust_1", decimal.NewFromInt(200))
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(200).Equal(line.UsedCredit))
	s.True(decimal.NewFromInt(100).Equal(line.AvailableCredit))

	_, err = repo.IncrementUsage(s.ctx, "cust_1", decimal.NewFromInt(101))
	s.True(ierr.IsCreditLimitExceeded(err))

	line, err = repo.GetByCustomerID(s.ctx, "cust_1")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(200).Equal(line.UsedCredit), "failed usage must not change the line")

	_, err = repo.IncrementUsage(s.ctx, "cust_missing", decimal.NewFromInt(1))
	s.True(ierr.IsNotFound(err))
}

func (s *SQLStoreSuite) TestCreditLine_DecrementUsageFloorsAtZero() {
	repo := NewCreditLineRepository(s.client, s.log)
	s.newLine("cust_2", 1000)

	_, err := repo.IncrementUsage(s.ctx, "cust_2", decimal.NewFromInt(400))
	s.Require().NoError(err)

	line, err := repo.DecrementUsage(s.ctx, "cust_2", decimal.NewFromInt(150))
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(250).Equal(line.UsedCredit))
	s.True(decimal.NewFromInt(750).Equal(line.AvailableCredit))

	line, err = repo.DecrementUsage(s.ctx, "cust_2", decimal.NewFromInt(5000))
	s.Require().NoError(err)
	s.True(line.UsedCredit.IsZero())
	s.True(decimal.NewFromInt(1000).Equal(line.AvailableCredit))
}

func (s *SQLStoreSuite) TestCreditLine_UpdateTermsKeepsStoredUsage() {
	repo := NewCreditLineRepository(s.client, s.log)
	stale := s.newLine("cust_terms", 500)

	// usage lands after the approval read the line
	_, err := repo.IncrementUsage(s.ctx, "cust_terms", decimal.NewFromInt(400))
	s.Require().NoError(err)

	stale.CreditLimit = decimal.NewFromInt(1000)
	stale.NetTerms = 60
	line, err := repo.UpdateTerms(s.ctx, stale)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(1000).Equal(line.CreditLimit))
	s.True(decimal.NewFromInt(400).Equal(line.UsedCredit))
	s.True(decimal.NewFromInt(600).Equal(line.AvailableCredit))
	s.Equal(60, line.NetTerms)

	stale.CreditLimit = decimal.NewFromInt(300)
	_, err = repo.UpdateTerms(s.ctx, stale)
	s.True(ierr.IsInvalidOperation(err))

	line, err = repo.GetByCustomerID(s.ctx, "cust_terms")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(1000).Equal(line.CreditLimit), "refused re-terming must not change the line")

	stale.CustomerID = "cust_missing"
	_, err = repo.UpdateTerms(s.ctx, stale)
	s.True(ierr.IsNotFound(err))
}

func (s *SQLStoreSuite) TestSequence_Next() {
	repo := NewSequenceRepository(s.client, s.log)

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Next(s.ctx, "invoice:2026")
		s.Require().NoError(err)
		s.Equal(want, got)
	}

	other, err := repo.Next(s.ctx, "adjustment:2026")
	s.Require().NoError(err)
	s.Equal(int64(1), other)

	otherTenant := types.SetTenantID(context.Background(), "tenant_other")
	first, err := repo.Next(otherTenant, "invoice:2026")
	s.Require().NoError(err)
	s.Equal(int64(1), first)
}

func (s *SQLStoreSuite) newInvoice(orderID, number string) *invoice.Invoice {
	now := time.Now().UTC()
	return &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: number,
		OrderID:       orderID,
		CustomerID:    "cust_1",
		Amount:        decimal.NewFromInt(1000),
		TaxAmount:     decimal.Zero,
		TotalAmount:   decimal.NewFromInt(1000),
		BalanceDue:    decimal.NewFromInt(1000),
		Currency:      types.DefaultCurrency,
		DueDate:       now.AddDate(0, 0, -45),
		InvoiceStatus: types.InvoiceStatusPending,
		PaymentStatus: types.PaymentStatusPending,
		PaymentMethod: types.PaymentMethodCredit,
		BaseModel:     types.GetDefaultBaseModel(s.ctx),
	}
}

func (s *SQLStoreSuite) TestInvoice_UniqueViolations() {
	repo := NewInvoiceRepository(s.client, s.log)

	s.Require().NoError(repo.Create(s.ctx, s.newInvoice("ord_1", "INV-2026-000001")))

	err := repo.Create(s.ctx, s.newInvoice("ord_1", "INV-2026-000002"))
	s.True(ierr.IsDuplicateInvoice(err))

	err = repo.Create(s.ctx, s.newInvoice("ord_2", "INV-2026-000001"))
	s.True(ierr.IsConcurrencyConflict(err))
}

func (s *SQLStoreSuite) TestInvoice_OverdueAndPenalty() {
	repo := NewInvoiceRepository(s.client, s.log)
	inv := s.newInvoice("ord_3", "INV-2026-000003")
	s.Require().NoError(repo.Create(s.ctx, inv))

	asOf := time.Now().UTC()
	n, err := repo.MarkOverdue(s.ctx, asOf)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	changed, err := repo.ApplyPenalty(s.ctx, inv.ID, decimal.NewFromInt(45), decimal.NewFromInt(1045), day)
	s.Require().NoError(err)
	s.True(changed)

	changed, err = repo.ApplyPenalty(s.ctx, inv.ID, decimal.NewFromInt(90), decimal.NewFromInt(1090), day)
	s.Require().NoError(err)
	s.False(changed, "second accrual on the same day is a no-op")

	got, err := repo.Get(s.ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusOverdue, got.InvoiceStatus)
	s.True(decimal.NewFromInt(1045).Equal(got.BalanceDue))
}

func (s *SQLStoreSuite) TestCreditMemo_Apply() {
	repo := NewCreditMemoRepository(s.client, s.log)
	memo := &creditmemo.CreditMemo{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_MEMO),
		MemoNumber: "CM-TEST1",
		CustomerID: "cust_1",
		Amount:     decimal.NewFromInt(60),
		Balance:    decimal.NewFromInt(60),
		MemoStatus: types.CreditMemoStatusIssued,
		BaseModel:  types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(repo.Create(s.ctx, memo))

	got, err := repo.Apply(s.ctx, memo.ID, decimal.NewFromInt(50))
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(10).Equal(got.Balance))
	s.True(decimal.NewFromInt(50).Equal(got.AppliedAmount))
	s.Equal(types.CreditMemoStatusPartiallyApplied, got.MemoStatus)

	_, err = repo.Apply(s.ctx, memo.ID, decimal.NewFromInt(11))
	s.True(ierr.IsInsufficientBalance(err))

	got, err = repo.Apply(s.ctx, memo.ID, decimal.NewFromInt(10))
	s.Require().NoError(err)
	s.True(got.Balance.IsZero())
	s.Equal(types.CreditMemoStatusFullyApplied, got.MemoStatus)
	s.True(got.AppliedAmount.Add(got.Balance).Equal(got.Amount))
}

func (s *SQLStoreSuite) TestCustomer_AdjustRewardPoints() {
	repo := NewCustomerRepository(s.client, s.log)
	c := &customer.Customer{
		ID:           "cust_pts",
		Name:         "Corner Pharmacy",
		RewardPoints: 100,
		BaseModel:    types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(repo.Create(s.ctx, c))

	s.Require().NoError(repo.AdjustRewardPoints(s.ctx, c.ID, -60))
	err := repo.AdjustRewardPoints(s.ctx, c.ID, -50)
	s.True(ierr.IsInsufficientBalance(err))

	got, err := repo.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(int64(40), got.RewardPoints)
}

func (s *SQLStoreSuite) TestOffer_IncrementUsageBounded() {
	repo := NewOfferRepository(s.client, s.log, cache.NewInMemoryCache(), time.Minute)
	o := &offer.Offer{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OFFER),
		Code:          "WELCOME10",
		DiscountType:  types.OfferDiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		UsageLimit:    1,
		BaseModel:     types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(repo.Create(s.ctx, o))

	// warm the cache, the increment must invalidate it
	_, err := repo.Get(s.ctx, o.ID)
	s.Require().NoError(err)

	s.Require().NoError(repo.IncrementUsage(s.ctx, o.ID))
	err = repo.IncrementUsage(s.ctx, o.ID)
	s.True(ierr.IsInvalidOperation(err))

	got, err := repo.Get(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(1, got.UsedCount)
	s.True(got.IsExhausted())
}

func (s *SQLStoreSuite) TestReward_MarkRedemptionUsedOnce() {
	repo := NewRewardRepository(s.client, s.log)
	rd := &reward.Redemption{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REWARD_REDEMPTION),
		CustomerID:       "cust_1",
		Value:            decimal.NewFromInt(5),
		RedemptionStatus: types.RewardRedemptionStatusRedeemed,
		BaseModel:        types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(repo.CreateRedemption(s.ctx, rd))

	s.Require().NoError(repo.MarkRedemptionUsed(s.ctx, rd.ID, "ord_1", time.Now().UTC()))
	err := repo.MarkRedemptionUsed(s.ctx, rd.ID, "ord_2", time.Now().UTC())
	s.True(ierr.IsInvalidOperation(err))

	got, err := repo.GetRedemption(s.ctx, rd.ID)
	s.Require().NoError(err)
	s.Equal("ord_1", got.OrderID)
}

func (s *SQLStoreSuite) TestDiscountCommit_Unique() {
	repo := NewDiscountCommitRepository(s.client, s.log)
	commit := func() *discount.Commit {
		return &discount.Commit{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT_COMMIT),
			OrderID:        "ord_1",
			InstrumentRef:  "credit_memo:cm_1",
			InstrumentType: types.InstrumentTypeCreditMemo,
			Amount:         decimal.NewFromInt(20),
			BaseModel:      types.GetDefaultBaseModel(s.ctx),
		}
	}

	s.Require().NoError(repo.Create(s.ctx, commit()))
	s.True(ierr.IsAlreadyExists(repo.Create(s.ctx, commit())))

	commits, err := repo.ListByOrderID(s.ctx, "ord_1")
	s.Require().NoError(err)
	s.Len(commits, 1)
}

func (s *SQLStoreSuite) TestWithTx_SavepointKeepsOuterTransaction() {
	repo := NewInvoiceRepository(s.client, s.log)

	err := s.client.WithTx(s.ctx, func(txCtx context.Context) error {
		s.Require().NoError(repo.Create(txCtx, s.newInvoice("ord_tx", "INV-2026-000010")))

		inner := s.client.WithTx(txCtx, func(innerCtx context.Context) error {
			return repo.Create(innerCtx, s.newInvoice("ord_tx", "INV-2026-000011"))
		})
		s.True(ierr.IsDuplicateInvoice(inner))

		return repo.Create(txCtx, s.newInvoice("ord_tx_2", "INV-2026-000012"))
	})
	s.Require().NoError(err)

	list, err := repo.List(s.ctx, types.NewInvoiceFilter())
	s.Require().NoError(err)
	s.Len(list, 2)
}
