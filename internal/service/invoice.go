package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/order"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type InvoiceService = interfaces.InvoiceService

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

// NextInvoiceNumber allocates INV-<year>-<000001> from the yearly sequence
func (s *invoiceService) NextInvoiceNumber(ctx context.Context, year int) (string, error) {
	key := fmt.Sprintf("%s:%d", types.SequenceScopeInvoice, year)
	n, err := s.InvoiceSequenceRepo.Next(ctx, key)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to allocate invoice number").
			Mark(ierr.ErrDatabase)
	}
	return fmt.Sprintf("%s-%d-%06d", types.InvoiceNumberPrefix, year, n), nil
}

// CreateInvoice bills a settled order once. A number collision with a
// concurrent writer is retried with a fresh number; a second invoice for the
// same order resolves to the one already stored.
func (s *invoiceService) CreateInvoice(ctx context.Context, o *order.Order, params dto.CreateInvoiceParams) (*invoice.Invoice, error) {
	if o == nil || o.ID == "" {
		return nil, ierr.NewError("order is required").
			WithHint("An invoice needs a persisted order").
			Mark(ierr.ErrValidation)
	}

	existing, err := s.InvoiceRepo.GetByOrderID(ctx, o.ID)
	if err == nil {
		return existing, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	netTerms := lo.FromPtrOr(params.NetTerms, s.defaultNetTerms())
	settledAt := o.CreatedAt.UTC()
	if settledAt.IsZero() {
		settledAt = time.Now().UTC()
	}

	var created *invoice.Invoice
	operation := func() error {
		inv := s.buildInvoice(ctx, o, params, settledAt, netTerms)

		err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
			number, err := s.NextInvoiceNumber(txCtx, settledAt.Year())
			if err != nil {
				return err
			}
			inv.InvoiceNumber = number
			return s.InvoiceRepo.Create(txCtx, inv)
		})

		switch {
		case err == nil:
			created = inv
			return nil
		case ierr.IsConcurrencyConflict(err):
			s.Logger.Warnw("invoice number collision, retrying",
				"order_id", o.ID,
				"invoice_number", inv.InvoiceNumber,
			)
			return err
		case ierr.IsDuplicateInvoice(err):
			stored, getErr := s.InvoiceRepo.GetByOrderID(ctx, o.ID)
			if getErr != nil {
				return backoff.Permanent(getErr)
			}
			created = stored
			return nil
		default:
			return backoff.Permanent(err)
		}
	}

	if err := backoff.Retry(operation, s.numberRetryPolicy(ctx)); err != nil {
		if ierr.IsConcurrencyConflict(err) {
			return nil, ierr.WithError(err).
				WithHint("Could not allocate a unique invoice number, please retry").
				WithReportableDetails(map[string]any{"order_id": o.ID}).
				Mark(ierr.ErrConcurrencyConflict)
		}
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", created.ID,
		"invoice_number", created.InvoiceNumber,
		"order_id", o.ID,
		"status", created.InvoiceStatus,
		"due_date", created.DueDate,
	)
	return created, nil
}

func (s *invoiceService) buildInvoice(ctx context.Context, o *order.Order, params dto.CreateInvoiceParams, settledAt time.Time, netTerms int) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		OrderID:        o.ID,
		CustomerID:     o.CustomerID,
		Amount:         params.PreDiscountSubtotal,
		TaxAmount:      params.TaxAmount,
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
		AmountPaid:     decimal.Zero,
		Currency:       o.Currency,
		DueDate:        settledAt.AddDate(0, 0, netTerms),
		InvoiceStatus:  types.InvoiceStatusPending,
		PaymentStatus:  o.PaymentStatus,
		PaymentMethod:  o.PaymentMethod,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if o.PaymentStatus == types.PaymentStatusPaid {
		inv.AmountPaid = o.TotalAmount
		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaidAt = lo.ToPtr(settledAt)
	}
	inv.RecomputeBalance()
	return inv
}

func (s *invoiceService) numberRetryPolicy(ctx context.Context) backoff.BackOffContext {
	attempts := s.Config.Invoice.NumberMaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// RecordPayment books a payment against an outstanding invoice, credits the
// customer account and releases credit usage for orders placed on credit
func (s *invoiceService) RecordPayment(ctx context.Context, invoiceID string, req dto.RecordInvoicePaymentRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var inv *invoice.Invoice
	amount := req.Amount
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.DB.LockKey(txCtx, types.NewLockRequest(txCtx, types.LockScopeInvoice, map[string]interface{}{
			"invoice_id": invoiceID,
		})); err != nil {
			return err
		}

		var err error
		inv, err = s.InvoiceRepo.Get(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if !inv.InvoiceStatus.IsOutstanding() {
			return ierr.NewError("invoice is not outstanding").
				WithHintf("Invoice %s is already %s", inv.InvoiceNumber, inv.InvoiceStatus).
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
					"status":     inv.InvoiceStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		amount = types.RoundToCurrencyPrecision(req.Amount, inv.Currency)
		if amount.GreaterThan(inv.BalanceDue) {
			return ierr.NewError("payment exceeds balance due").
				WithHintf("Payment cannot exceed the balance due of %s", inv.BalanceDue.StringFixed(2)).
				WithReportableDetails(map[string]any{
					"amount":      amount,
					"balance_due": inv.BalanceDue,
				}).
				Mark(ierr.ErrValidation)
		}

		release := applyInvoicePayment(txCtx, inv, amount)
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}

		accountSvc := NewAccountTransactionService(s.ServiceParams)
		if _, err := accountSvc.AppendTransaction(txCtx, dto.AccountTransactionRequest{
			CustomerID:    inv.CustomerID,
			Type:          types.AccountTransactionTypeCredit,
			Amount:        amount,
			ReferenceType: types.AccountReferenceTypeInvoice,
			ReferenceID:   inv.ID,
			Description:   strings.TrimSpace(fmt.Sprintf("payment on %s %s", inv.InvoiceNumber, req.Reference)),
		}); err != nil {
			return err
		}

		return releaseInvoiceCredit(txCtx, s.ServiceParams, inv, release)
	})
	if err != nil {
		return nil, err
	}

	activitySvc := NewActivityService(s.ServiceParams)
	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		OrderID:     inv.OrderID,
		Type:        types.ActivityTypeInvoicePaymentRecorded,
		Description: fmt.Sprintf("payment of %s recorded on %s", amount.StringFixed(2), inv.InvoiceNumber),
		Metadata: map[string]interface{}{
			"invoice_id":  inv.ID,
			"amount":      amount,
			"reference":   req.Reference,
			"balance_due": inv.BalanceDue,
		},
		After: inv,
	})

	return &dto.InvoiceResponse{Invoice: inv}, nil
}

// applyInvoicePayment books amount as paid and closes the invoice once nothing
// is due. It returns the principal the payment settled.
func applyInvoicePayment(ctx context.Context, inv *invoice.Invoice, amount decimal.Decimal) decimal.Decimal {
	principal := decimal.Min(amount, inv.OutstandingPrincipal())
	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.RecomputeBalance()
	if inv.BalanceDue.IsZero() {
		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaymentStatus = types.PaymentStatusPaid
		inv.PaidAt = lo.ToPtr(time.Now().UTC())
	}
	inv.UpdatedBy = types.GetUserID(ctx)
	return principal
}

// releaseInvoiceCredit frees credit usage for principal settled on an invoice
// raised for a credit order. Penalty is never drawn on the line.
func releaseInvoiceCredit(ctx context.Context, params ServiceParams, inv *invoice.Invoice, principal decimal.Decimal) error {
	if inv.PaymentMethod != types.PaymentMethodCredit || !principal.IsPositive() {
		return nil
	}
	_, err := NewCreditLineService(params).RecordCreditRepayment(ctx, inv.CustomerID, principal)
	return err
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) GetInvoiceByOrderID(ctx context.Context, orderID string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ListInvoicesResponse{Items: items}, nil
}

func (s *invoiceService) defaultNetTerms() int {
	if s.Config.Invoice.DefaultNetTerms > 0 {
		return s.Config.Invoice.DefaultNetTerms
	}
	return int(types.DefaultNetTerms)
}
