package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/accounttransaction"
	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	"github.com/pharmalink/ledger/internal/domain/discount"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/order"
	"github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	"github.com/pharmalink/ledger/internal/types"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)
}

type CreditApplicationService interface {
	SubmitApplication(ctx context.Context, req dto.SubmitCreditApplicationRequest) (*dto.CreditApplicationResponse, error)
	GetApplication(ctx context.Context, id string) (*dto.CreditApplicationResponse, error)
	ListApplications(ctx context.Context, filter *creditapplication.Filter) (*dto.ListCreditApplicationsResponse, error)
	StartReview(ctx context.Context, id string) (*dto.CreditApplicationResponse, error)
	ReviewApplication(ctx context.Context, id string, req dto.ReviewCreditApplicationRequest) (*dto.ReviewCreditApplicationResponse, error)
	ExpireApplications(ctx context.Context, asOf time.Time) (*dto.ExpireCreditApplicationsResponse, error)
}

type CreditLineService interface {
	GetCreditLine(ctx context.Context, customerID string) (*dto.CreditLineResponse, error)
	RecordCreditUsage(ctx context.Context, customerID string, amount decimal.Decimal) (*creditline.CreditLine, error)
	RecordCreditRepayment(ctx context.Context, customerID string, amount decimal.Decimal) (*creditline.CreditLine, error)
}

type PenaltyService interface {
	CalculatePenalties(ctx context.Context, asOf time.Time) (*dto.CalculatePenaltiesResponse, error)
}

type OfferService interface {
	CreateOffer(ctx context.Context, req dto.CreateOfferRequest) (*dto.OfferResponse, error)
	GetOffer(ctx context.Context, id string) (*dto.OfferResponse, error)
}

type RewardService interface {
	// AwardPoints credits earned points for a paid order and returns the points awarded
	AwardPoints(ctx context.Context, customerID, orderID string, amountPaid decimal.Decimal) (int64, error)
	RedeemPoints(ctx context.Context, customerID string, req dto.RedeemRewardRequest) (*dto.RedemptionResponse, error)
	GetLedger(ctx context.Context, customerID string) (*dto.RewardLedgerResponse, error)
}

type DiscountService interface {
	ComputeDiscounts(ctx context.Context, customerID string, subtotal, tax, shipping decimal.Decimal, instruments []discount.Instrument) (*discount.Result, error)
	CommitDiscounts(ctx context.Context, orderID string, details []discount.Detail) (*dto.CommitDiscountsResponse, error)
	// CommitOrderDiscounts commits the discount lines stored on the order
	CommitOrderDiscounts(ctx context.Context, orderID string) (*dto.CommitDiscountsResponse, error)
}

type InvoiceService interface {
	NextInvoiceNumber(ctx context.Context, year int) (string, error)
	CreateInvoice(ctx context.Context, o *order.Order, params dto.CreateInvoiceParams) (*invoice.Invoice, error)
	RecordPayment(ctx context.Context, invoiceID string, req dto.RecordInvoicePaymentRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	GetInvoiceByOrderID(ctx context.Context, orderID string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type SettlementService interface {
	SettleOrder(ctx context.Context, req dto.SettleOrderRequest) (*dto.OrderResponse, error)
	GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, filter *order.Filter) (*dto.ListOrdersResponse, error)
}

type PaymentAdjustmentService interface {
	ClassifyAdjustment(originalAmount, newAmount decimal.Decimal) paymentadjustment.Classification
	CreateAdjustment(ctx context.Context, orderID string, req dto.CreateAdjustmentRequest) (*dto.AdjustmentResponse, error)
	// RecordAdjustment numbers and inserts an adjustment built by another flow
	RecordAdjustment(ctx context.Context, adj *paymentadjustment.PaymentAdjustment) error
	ListAdjustments(ctx context.Context, orderID string) (*dto.ListAdjustmentsResponse, error)
}

type CreditMemoService interface {
	IssueCreditMemo(ctx context.Context, req dto.IssueCreditMemoRequest) (*dto.CreditMemoResponse, error)
	ApplyCreditMemo(ctx context.Context, memoID string, req dto.ApplyCreditMemoRequest) (*dto.CreditMemoResponse, error)
	GetCreditMemo(ctx context.Context, id string) (*dto.CreditMemoResponse, error)
	ListCreditMemos(ctx context.Context, customerID string) (*dto.ListCreditMemosResponse, error)
}

type RefundService interface {
	CreateRefund(ctx context.Context, orderID string, req dto.CreateRefundRequest) (*dto.RefundResponse, error)
	// GetRefundableAmount is the order total less completed refunds
	GetRefundableAmount(ctx context.Context, orderID string) (decimal.Decimal, error)
}

type AccountTransactionService interface {
	AppendTransaction(ctx context.Context, req dto.AccountTransactionRequest) (*accounttransaction.AccountTransaction, error)
	ListTransactions(ctx context.Context, customerID string, filter *types.QueryFilter) (*dto.ListAccountTransactionsResponse, error)
	GetBalance(ctx context.Context, customerID string) (decimal.Decimal, error)
}

type ARAgingService interface {
	GetAging(ctx context.Context, req dto.AgingReportRequest) (*dto.AgingReportResponse, error)
	ExportAgingCSV(ctx context.Context, req dto.AgingReportRequest, w io.Writer) error
}

type ActivityService interface {
	// LogActivity records and publishes an audit entry. Failures are logged, never returned.
	LogActivity(ctx context.Context, req dto.ActivityRequest)
	ListActivities(ctx context.Context, orderID string) (*dto.ListActivitiesResponse, error)
}

type NotificationService interface {
	NotifyCreditDecision(ctx context.Context, app *creditapplication.CreditApplication, line *creditline.CreditLine)
}
