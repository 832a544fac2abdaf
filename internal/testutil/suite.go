package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/pharmalink/ledger/internal/cache"
	"github.com/pharmalink/ledger/internal/config"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/pubsub"
	"github.com/pharmalink/ledger/internal/pubsub/memory"
	"github.com/pharmalink/ledger/internal/types"
)

// Stores holds all in-memory repositories
type Stores struct {
	CustomerRepo           *InMemoryCustomerStore
	CreditApplicationRepo  *InMemoryCreditApplicationStore
	CreditLineRepo         *InMemoryCreditLineStore
	CreditTermsRepo        *InMemoryCreditTermsStore
	OrderRepo              *InMemoryOrderStore
	DiscountCommitRepo     *InMemoryDiscountCommitStore
	OfferRepo              *InMemoryOfferStore
	RewardRepo             *InMemoryRewardStore
	InvoiceRepo            *InMemoryInvoiceStore
	InvoiceSequenceRepo    *InMemorySequenceStore
	CreditMemoRepo         *InMemoryCreditMemoStore
	PaymentAdjustmentRepo  *InMemoryPaymentAdjustmentStore
	AccountTransactionRepo *InMemoryAccountTransactionStore
	ActivityRepo           *InMemoryActivityStore
}

// BaseServiceTestSuite provides common functionality for service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	logger    *logger.Logger
	config    *config.Configuration
	db        *MockPostgresClient
	publisher pubsub.PubSub
	cache     cache.Cache
	gateway   *FakePaymentGateway
	emails    *FakeEmailSender
	locker    *InMemoryLocker
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Email.Enabled = true
	s.config = cfg
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	if s.config == nil {
		s.SetupSuite()
	}
	s.setupContext()
	s.setupStores()
	s.db = NewMockPostgresClient()
	s.publisher = memory.NewPubSub(s.logger)
	s.cache = cache.NewInMemoryCache()
	s.gateway = NewFakePaymentGateway()
	s.emails = NewFakeEmailSender()
	s.locker = NewInMemoryLocker()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = types.SetTenantID(s.ctx, types.DefaultTenantID)
	s.ctx = types.SetUserID(s.ctx, "user_test")
	s.ctx = types.SetRequestID(s.ctx, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		CustomerRepo:           NewInMemoryCustomerStore(),
		CreditApplicationRepo:  NewInMemoryCreditApplicationStore(),
		CreditLineRepo:         NewInMemoryCreditLineStore(),
		CreditTermsRepo:        NewInMemoryCreditTermsStore(),
		OrderRepo:              NewInMemoryOrderStore(),
		DiscountCommitRepo:     NewInMemoryDiscountCommitStore(),
		OfferRepo:              NewInMemoryOfferStore(),
		RewardRepo:             NewInMemoryRewardStore(),
		InvoiceRepo:            NewInMemoryInvoiceStore(),
		InvoiceSequenceRepo:    NewInMemorySequenceStore(),
		CreditMemoRepo:         NewInMemoryCreditMemoStore(),
		PaymentAdjustmentRepo:  NewInMemoryPaymentAdjustmentStore(),
		AccountTransactionRepo: NewInMemoryAccountTransactionStore(),
		ActivityRepo:           NewInMemoryActivityStore(),
	}
}

// ClearStores clears all stores
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.CustomerRepo.Clear()
	s.stores.CreditApplicationRepo.Clear()
	s.stores.CreditLineRepo.Clear()
	s.stores.CreditTermsRepo.Clear()
	s.stores.OrderRepo.Clear()
	s.stores.DiscountCommitRepo.Clear()
	s.stores.OfferRepo.Clear()
	s.stores.RewardRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.InvoiceSequenceRepo.Clear()
	s.stores.CreditMemoRepo.Clear()
	s.stores.PaymentAdjustmentRepo.Clear()
	s.stores.AccountTransactionRepo.Clear()
	s.stores.ActivityRepo.Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetPublisher() pubsub.PubSub {
	return s.publisher
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetGateway() *FakePaymentGateway {
	return s.gateway
}

func (s *BaseServiceTestSuite) GetEmailSender() *FakeEmailSender {
	return s.emails
}

func (s *BaseServiceTestSuite) GetLocker() *InMemoryLocker {
	return s.locker
}

func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
