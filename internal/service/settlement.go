package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/customer"
	"github.com/pharmalink/ledger/internal/domain/discount"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/order"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/idempotency"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type SettlementService = interfaces.SettlementService

type settlementService struct {
	ServiceParams
	idempotency *idempotency.Generator
}

func NewSettlementService(params ServiceParams) SettlementService {
	return &settlementService{
		ServiceParams: params,
		idempotency:   idempotency.NewGenerator(),
	}
}

// pricedCart is the pre-settlement snapshot stored on the order_settled activity
type pricedCart struct {
	CustomerID      string                  `json:"customer_id"`
	Items           []order.Item            `json:"items"`
	Subtotal        decimal.Decimal         `json:"subtotal"`
	Tax             decimal.Decimal         `json:"tax"`
	Shipping        decimal.Decimal         `json:"shipping"`
	Instruments     []dto.InstrumentRequest `json:"instruments,omitempty"`
	DiscountAmount  decimal.Decimal         `json:"discount_amount"`
	DiscountDetails []discount.Detail       `json:"discount_details"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	PaymentMethod   types.PaymentMethod     `json:"payment_method"`
}

// persistPlan captures what the payment branch decided before the order is written
type persistPlan struct {
	netTerms     *int
	accountDebit bool
}

// SettleOrder prices the cart, takes payment by the requested method and
// persists the order with its invoice. Discount commits, reward points and
// the audit record follow the write and never undo it.
func (s *settlementService) SettleOrder(ctx context.Context, req dto.SettleOrderRequest) (*dto.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cust, err := s.CustomerRepo.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	currency := s.currency(req.Currency)
	subtotal := types.RoundToCurrencyPrecision(req.Subtotal(), currency)
	tax := types.RoundToCurrencyPrecision(req.Tax, currency)
	shipping := types.RoundToCurrencyPrecision(req.Shipping, currency)

	instruments, err := dto.ToInstruments(req.Instruments)
	if err != nil {
		return nil, err
	}

	discountSvc := NewDiscountService(s.ServiceParams)
	priced, err := discountSvc.ComputeDiscounts(ctx, cust.ID, subtotal, tax, shipping, instruments)
	if err != nil {
		return nil, err
	}

	o := &order.Order{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		OrderNumber:     types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_ORDER),
		CustomerID:      cust.ID,
		Items:           req.ToItems(),
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		DiscountAmount:  priced.DiscountAmount,
		DiscountDetails: priced.DiscountDetails,
		Currency:        currency,
		PaymentMethod:   req.PaymentMethod,
		Metadata:        req.Metadata,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	o.TotalAmount = decimal.Max(decimal.Zero, o.GrossAmount().Sub(o.DiscountAmount))
	if err := o.Validate(); err != nil {
		return nil, err
	}

	before := pricedCart{
		CustomerID:      cust.ID,
		Items:           o.Items,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Instruments:     req.Instruments,
		DiscountAmount:  o.DiscountAmount,
		DiscountDetails: o.DiscountDetails,
		TotalAmount:     o.TotalAmount,
		PaymentMethod:   o.PaymentMethod,
	}

	var inv *invoice.Invoice
	switch {
	case o.TotalAmount.IsZero():
		inv, err = s.settleZeroTotal(ctx, o)
	case o.PaymentMethod == types.PaymentMethodCard:
		inv, err = s.settleCard(ctx, o, req.Card)
	case o.PaymentMethod == types.PaymentMethodCredit:
		inv, err = s.settleCredit(ctx, o)
	default:
		inv, err = s.settleManual(ctx, o)
	}
	if err != nil {
		return nil, err
	}

	s.afterSettlement(ctx, cust, o, before)

	return &dto.OrderResponse{Order: o, Invoice: inv}, nil
}

func (s *settlementService) settleZeroTotal(ctx context.Context, o *order.Order) (*invoice.Invoice, error) {
	o.OrderStatus = types.OrderStatusNew
	o.PaymentStatus = types.PaymentStatusPaid
	return s.persist(ctx, o, persistPlan{})
}

func (s *settlementService) settleCard(ctx context.Context, o *order.Order, card *dto.CardRequest) (*invoice.Invoice, error) {
	if card == nil {
		return nil, ierr.NewError("card details are required").
			WithHint("Provide a card token or saved payment profile for card payments").
			Mark(ierr.ErrValidation)
	}

	charge, err := s.Gateway.ChargeCard(ctx, interfaces.ChargeRequest{
		Amount:     o.TotalAmount,
		Currency:   o.Currency,
		CustomerID: o.CustomerID,
		Card: interfaces.CardDetails{
			Token:           card.Token,
			SavedProfileRef: card.SavedProfileRef,
		},
		IdempotencyKey: s.idempotency.GenerateKey(idempotency.ScopeCardCharge, map[string]interface{}{
			"order_id": o.ID,
			"amount":   o.TotalAmount.StringFixed(2),
		}),
		Description: fmt.Sprintf("Order %s", o.OrderNumber),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Card payment could not be processed").
			WithReportableDetails(map[string]any{"customer_id": o.CustomerID}).
			Mark(ierr.ErrGateway)
	}
	if !charge.Success {
		return nil, ierr.NewError("card payment declined").
			WithHintf("Card payment was declined: %s", charge.FailureMessage).
			WithReportableDetails(map[string]any{
				"customer_id":     o.CustomerID,
				"failure_message": charge.FailureMessage,
			}).
			Mark(ierr.ErrGateway)
	}

	o.OrderStatus = types.OrderStatusNew
	o.PaymentStatus = types.PaymentStatusPaid
	o.GatewayTransactionID = charge.TransactionID

	inv, err := s.persist(ctx, o, persistPlan{})
	if err != nil {
		s.Logger.Errorw("order persistence failed after successful charge",
			"error", err,
			"order_id", o.ID,
			"transaction_id", charge.TransactionID,
		)
		s.logSettlementFailure(ctx, o, err, map[string]interface{}{
			"transaction_id": charge.TransactionID,
		})
		return nil, err
	}
	return inv, nil
}

func (s *settlementService) settleCredit(ctx context.Context, o *order.Order) (*invoice.Invoice, error) {
	creditSvc := NewCreditLineService(s.ServiceParams)
	line, err := creditSvc.RecordCreditUsage(ctx, o.CustomerID, o.TotalAmount)
	if err != nil {
		return nil, err
	}

	o.OrderStatus = types.OrderStatusCreditApprovalProcessing
	o.PaymentStatus = types.PaymentStatusPending

	netTerms := line.NetTerms
	inv, err := s.persist(ctx, o, persistPlan{
		netTerms:     &netTerms,
		accountDebit: true,
	})
	if err != nil {
		if _, releaseErr := creditSvc.RecordCreditRepayment(ctx, o.CustomerID, o.TotalAmount); releaseErr != nil {
			s.Logger.Errorw("failed to release credit usage after persistence failure",
				"error", releaseErr,
				"customer_id", o.CustomerID,
				"amount", o.TotalAmount,
			)
		}
		s.logSettlementFailure(ctx, o, err, map[string]interface{}{
			"credit_released": o.TotalAmount,
		})
		return nil, err
	}
	return inv, nil
}

func (s *settlementService) settleManual(ctx context.Context, o *order.Order) (*invoice.Invoice, error) {
	o.OrderStatus = types.OrderStatusNew
	o.PaymentStatus = types.PaymentStatusPending

	inv, err := s.persist(ctx, o, persistPlan{accountDebit: true})
	if err != nil {
		s.logSettlementFailure(ctx, o, err, nil)
		return nil, err
	}
	return inv, nil
}

// persist writes the order, its invoice and, for unpaid orders, the receivable
// debit in one transaction
func (s *settlementService) persist(ctx context.Context, o *order.Order, plan persistPlan) (*invoice.Invoice, error) {
	var inv *invoice.Invoice
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.OrderRepo.Create(txCtx, o); err != nil {
			return err
		}

		invoiceSvc := NewInvoiceService(s.ServiceParams)
		var err error
		inv, err = invoiceSvc.CreateInvoice(txCtx, o, dto.CreateInvoiceParams{
			PreDiscountSubtotal: o.Subtotal,
			TaxAmount:           o.Tax,
			NetTerms:            plan.netTerms,
		})
		if err != nil {
			return err
		}

		if !plan.accountDebit {
			return nil
		}
		accountSvc := NewAccountTransactionService(s.ServiceParams)
		_, err = accountSvc.AppendTransaction(txCtx, dto.AccountTransactionRequest{
			CustomerID:    o.CustomerID,
			Type:          types.AccountTransactionTypeDebit,
			Amount:        o.TotalAmount,
			ReferenceType: types.AccountReferenceTypeOrder,
			ReferenceID:   o.ID,
			Description:   fmt.Sprintf("order %s invoiced as %s", o.OrderNumber, inv.InvoiceNumber),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("order settled",
		"order_id", o.ID,
		"order_number", o.OrderNumber,
		"customer_id", o.CustomerID,
		"payment_method", o.PaymentMethod,
		"total_amount", o.TotalAmount,
		"invoice_number", inv.InvoiceNumber,
	)
	return inv, nil
}

func (s *settlementService) afterSettlement(ctx context.Context, cust *customer.Customer, o *order.Order, before pricedCart) {
	activitySvc := NewActivityService(s.ServiceParams)

	if len(o.DiscountDetails) > 0 {
		discountSvc := NewDiscountService(s.ServiceParams)
		commit, err := discountSvc.CommitDiscounts(ctx, o.ID, o.DiscountDetails)
		if err != nil {
			metadata := map[string]interface{}{
				"error": err.Error(),
			}
			if commit != nil {
				metadata["committed"] = commit.Committed
				metadata["skipped"] = commit.Skipped
			}
			activitySvc.LogActivity(ctx, dto.ActivityRequest{
				OrderID:     o.ID,
				Type:        types.ActivityTypeDiscountCommitFailed,
				Description: "discounts were priced but could not all be committed",
				Metadata:    metadata,
			})
		}
	}

	if o.PaymentMethod != types.PaymentMethodCredit && o.TotalAmount.IsPositive() {
		rewardSvc := NewRewardService(s.ServiceParams)
		if _, err := rewardSvc.AwardPoints(ctx, cust.ID, o.ID, o.TotalAmount); err != nil {
			activitySvc.LogActivity(ctx, dto.ActivityRequest{
				OrderID:     o.ID,
				Type:        types.ActivityTypeRewardAwardFailed,
				Description: "reward points could not be awarded",
				Metadata: map[string]interface{}{
					"error": err.Error(),
				},
			})
		}
	}

	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		OrderID:     o.ID,
		Type:        types.ActivityTypeOrderSettled,
		Description: fmt.Sprintf("order %s settled by %s for %s", o.OrderNumber, o.PaymentMethod, o.TotalAmount.StringFixed(2)),
		Metadata: map[string]interface{}{
			"customer_id":    cust.ID,
			"payment_status": o.PaymentStatus,
			"order_status":   o.OrderStatus,
		},
		Before: before,
		After:  o,
	})
}

func (s *settlementService) logSettlementFailure(ctx context.Context, o *order.Order, cause error, extra map[string]interface{}) {
	metadata := map[string]interface{}{
		"customer_id":    o.CustomerID,
		"payment_method": o.PaymentMethod,
		"total_amount":   o.TotalAmount,
		"error":          cause.Error(),
	}
	for k, v := range extra {
		metadata[k] = v
	}

	activitySvc := NewActivityService(s.ServiceParams)
	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		OrderID:     o.ID,
		Type:        types.ActivityTypeSettlementFailed,
		Description: fmt.Sprintf("order %s could not be persisted", o.OrderNumber),
		Metadata:    metadata,
		After:       o,
	})
}

func (s *settlementService) currency(requested string) string {
	if c := strings.ToLower(strings.TrimSpace(requested)); c != "" {
		return c
	}
	if s.Config != nil && s.Config.Stripe.Currency != "" {
		return strings.ToLower(s.Config.Stripe.Currency)
	}
	return types.DefaultCurrency
}

func (s *settlementService) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := s.OrderRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.GetByOrderID(ctx, id)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	return &dto.OrderResponse{Order: o, Invoice: inv}, nil
}

func (s *settlementService) ListOrders(ctx context.Context, filter *order.Filter) (*dto.ListOrdersResponse, error) {
	if filter == nil {
		filter = &order.Filter{}
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.OrderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ListOrdersResponse{Items: items}, nil
}
