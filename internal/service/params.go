package service

import (
	"go.uber.org/fx"

	"github.com/pharmalink/ledger/internal/config"
	"github.com/pharmalink/ledger/internal/domain/accounttransaction"
	"github.com/pharmalink/ledger/internal/domain/activity"
	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	"github.com/pharmalink/ledger/internal/domain/creditmemo"
	"github.com/pharmalink/ledger/internal/domain/customer"
	"github.com/pharmalink/ledger/internal/domain/discount"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/offer"
	"github.com/pharmalink/ledger/internal/domain/order"
	"github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	"github.com/pharmalink/ledger/internal/domain/reward"
	"github.com/pharmalink/ledger/internal/email"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/pubsub"
	"github.com/pharmalink/ledger/internal/redis"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	fx.In

	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	CustomerRepo           customer.Repository
	CreditApplicationRepo  creditapplication.Repository
	CreditLineRepo         creditline.Repository
	CreditTermsRepo        creditline.TermsRepository
	OrderRepo              order.Repository
	DiscountCommitRepo     discount.CommitRepository
	OfferRepo              offer.Repository
	RewardRepo             reward.Repository
	InvoiceRepo            invoice.Repository
	InvoiceSequenceRepo    invoice.SequenceRepository
	CreditMemoRepo         creditmemo.Repository
	PaymentAdjustmentRepo  paymentadjustment.Repository
	AccountTransactionRepo accounttransaction.Repository
	ActivityRepo           activity.Repository

	// Collaborators
	Locker  redis.Locker `optional:"true"`
	PubSub  pubsub.PubSub
	Gateway interfaces.PaymentGateway
	Email   *email.Email
}
