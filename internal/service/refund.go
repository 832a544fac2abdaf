package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/order"
	"github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/idempotency"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type RefundService = interfaces.RefundService

type refundService struct {
	ServiceParams
	idempotency *idempotency.Generator
}

func NewRefundService(params ServiceParams) RefundService {
	return &refundService{
		ServiceParams: params,
		idempotency:   idempotency.NewGenerator(),
	}
}

func (s *refundService) GetRefundableAmount(ctx context.Context, orderID string) (decimal.Decimal, error) {
	o, err := s.OrderRepo.Get(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	refunded, _, err := s.refundedSoFar(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Max(decimal.Zero, o.TotalAmount.Sub(refunded)), nil
}

// refundedSoFar sums refunds that have not failed. Pending refunds hold their
// amount so two concurrent refunds cannot both claim the same remainder.
func (s *refundService) refundedSoFar(ctx context.Context, orderID string) (decimal.Decimal, int, error) {
	adjustments, err := s.PaymentAdjustmentRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return decimal.Zero, 0, err
	}
	refunds := lo.Filter(adjustments, func(a *paymentadjustment.PaymentAdjustment, _ int) bool {
		return a.AdjustmentType.IsRefund() && a.PaymentStatus != types.PaymentStatusFailed
	})
	total := lo.Reduce(refunds, func(acc decimal.Decimal, a *paymentadjustment.PaymentAdjustment, _ int) decimal.Decimal {
		return acc.Add(a.DifferenceAmount.Abs())
	}, decimal.Zero)
	return total, len(refunds), nil
}

// CreateRefund returns money on a settled order, either through the original
// payment instrument or as a credit memo. The refund is reserved as a pending
// adjustment before any money moves.
func (s *refundService) CreateRefund(ctx context.Context, orderID string, req dto.CreateRefundRequest) (*dto.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o, err := s.OrderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if req.RefundMethod == types.RefundMethodOriginalPayment &&
		o.PaymentMethod == types.PaymentMethodCard && o.GatewayTransactionID == "" {
		return nil, ierr.NewError("card order has no gateway transaction").
			WithHint("Refund this order as a credit memo").
			WithReportableDetails(map[string]any{"order_id": o.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	amount := types.RoundToCurrencyPrecision(req.Amount, o.Currency)
	var adj *paymentadjustment.PaymentAdjustment
	var sequence int

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.DB.LockKey(txCtx, types.NewLockRequest(txCtx, types.LockScopeOrder, map[string]interface{}{
			"order_id": o.ID,
		})); err != nil {
			return err
		}

		refunded, n, err := s.refundedSoFar(txCtx, o.ID)
		if err != nil {
			return err
		}
		sequence = n

		refundable := decimal.Max(decimal.Zero, o.TotalAmount.Sub(refunded))
		if amount.GreaterThan(refundable) {
			return ierr.NewError("refund exceeds refundable amount").
				WithHintf("At most %s can be refunded on this order", refundable.StringFixed(2)).
				WithReportableDetails(map[string]any{
					"order_id":   o.ID,
					"amount":     amount,
					"refundable": refundable,
				}).
				Mark(ierr.ErrValidation)
		}

		adjType := types.AdjustmentTypePartialRefund
		if amount.Equal(refundable) {
			adjType = types.AdjustmentTypeFullRefund
		}
		previous := o.TotalAmount.Sub(refunded)
		adj = &paymentadjustment.PaymentAdjustment{
			ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_ADJUSTMENT),
			OrderID:          o.ID,
			CustomerID:       o.CustomerID,
			AdjustmentType:   adjType,
			OriginalAmount:   previous,
			NewAmount:        previous.Sub(amount),
			DifferenceAmount: amount.Neg(),
			PaymentStatus:    types.PaymentStatusPending,
			RefundMethod:     req.RefundMethod,
			Reason:           req.Reason,
			Description:      describeAdjustment(adjType, o.OrderNumber, amount, req.Reason),
			BaseModel:        types.GetDefaultBaseModel(txCtx),
		}
		return NewPaymentAdjustmentService(s.ServiceParams).RecordAdjustment(txCtx, adj)
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.RefundResponse{Adjustment: adj}
	switch req.RefundMethod {
	case types.RefundMethodCreditMemo:
		err = s.refundToCreditMemo(ctx, o, adj, resp)
	default:
		err = s.refundToOriginalPayment(ctx, o, adj, sequence)
	}
	if err != nil {
		s.failRefund(ctx, o, adj, err)
		return nil, err
	}

	adj.PaymentStatus = types.PaymentStatusCompleted
	if err := s.PaymentAdjustmentRepo.Update(ctx, adj); err != nil {
		return nil, err
	}

	s.Logger.Infow("processed refund",
		"order_id", o.ID,
		"adjustment_id", adj.ID,
		"amount", amount,
		"method", req.RefundMethod,
		"type", adj.AdjustmentType,
	)

	activitySvc := NewActivityService(s.ServiceParams)
	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		OrderID:     o.ID,
		Type:        types.ActivityTypeRefundProcessed,
		Description: adj.Description,
		Metadata: map[string]interface{}{
			"adjustment_id":  adj.ID,
			"amount":         amount,
			"refund_method":  req.RefundMethod,
			"credit_memo_id": adj.CreditMemoID,
		},
		After: adj,
	})

	return resp, nil
}

func (s *refundService) refundToOriginalPayment(ctx context.Context, o *order.Order, adj *paymentadjustment.PaymentAdjustment, sequence int) error {
	amount := adj.DifferenceAmount.Abs()

	if o.PaymentMethod == types.PaymentMethodCard {
		result, err := s.Gateway.Refund(ctx, interfaces.RefundRequest{
			TransactionID: o.GatewayTransactionID,
			Amount:        amount,
			Currency:      o.Currency,
			IdempotencyKey: s.idempotency.GenerateKey(idempotency.ScopeCardRefund, map[string]interface{}{
				"order_id": o.ID,
				"amount":   amount.StringFixed(2),
				"sequence": sequence,
			}),
		})
		if err != nil {
			return ierr.WithError(err).
				WithHint("The card refund could not be processed").
				WithReportableDetails(map[string]any{"order_id": o.ID}).
				Mark(ierr.ErrGateway)
		}
		if !result.Success {
			return ierr.NewError("card refund declined").
				WithHintf("The card refund was declined: %s", result.FailureMessage).
				WithReportableDetails(map[string]any{
					"order_id": o.ID,
					"reason":   result.FailureMessage,
				}).
				Mark(ierr.ErrGateway)
		}
		adj.GatewayTransactionID = result.RefundTransactionID
		return nil
	}

	return s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.creditInvoice(txCtx, o.ID, amount); err != nil {
			return err
		}
		if o.IsOnCredit() {
			creditSvc := NewCreditLineService(s.ServiceParams)
			if _, err := creditSvc.RecordCreditRepayment(txCtx, o.CustomerID, amount); err != nil {
				return err
			}
		}
		accountSvc := NewAccountTransactionService(s.ServiceParams)
		_, err := accountSvc.AppendTransaction(txCtx, dto.AccountTransactionRequest{
			CustomerID:    o.CustomerID,
			Type:          types.AccountTransactionTypeCredit,
			Amount:        amount,
			ReferenceType: types.AccountReferenceTypeAdjustment,
			ReferenceID:   adj.ID,
			Description:   adj.Description,
		})
		return err
	})
}

// creditInvoice takes a refunded amount off what the order's invoice still
// bills. Orders settled without an invoice are left alone.
func (s *refundService) creditInvoice(ctx context.Context, orderID string, amount decimal.Decimal) error {
	inv, err := s.InvoiceRepo.GetByOrderID(ctx, orderID)
	if ierr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.DB.LockKey(ctx, types.NewLockRequest(ctx, types.LockScopeInvoice, map[string]interface{}{
		"invoice_id": inv.ID,
	})); err != nil {
		return err
	}
	inv, err = s.InvoiceRepo.Get(ctx, inv.ID)
	if err != nil {
		return err
	}

	inv.CreditedAmount = inv.CreditedAmount.Add(amount)
	inv.RecomputeBalance()
	if inv.BalanceDue.IsZero() && inv.InvoiceStatus.IsOutstanding() {
		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaidAt = lo.ToPtr(time.Now().UTC())
	}
	inv.UpdatedBy = types.GetUserID(ctx)
	return s.InvoiceRepo.Update(ctx, inv)
}

func (s *refundService) refundToCreditMemo(ctx context.Context, o *order.Order, adj *paymentadjustment.PaymentAdjustment, resp *dto.RefundResponse) error {
	memoSvc := &creditMemoService{ServiceParams: s.ServiceParams}
	memoResp, err := memoSvc.issue(ctx, dto.IssueCreditMemoRequest{
		CustomerID: o.CustomerID,
		Amount:     adj.DifferenceAmount.Abs(),
		Reason:     fmt.Sprintf("refund on order %s: %s", o.OrderNumber, adj.Reason),
		OrderID:    o.ID,
	}, false)
	if err != nil {
		return err
	}
	adj.CreditMemoID = memoResp.Memo.ID
	resp.CreditMemo = memoResp.Memo
	return nil
}

func (s *refundService) failRefund(ctx context.Context, o *order.Order, adj *paymentadjustment.PaymentAdjustment, cause error) {
	adj.PaymentStatus = types.PaymentStatusFailed
	adj.FailureReason = cause.Error()
	if err := s.PaymentAdjustmentRepo.Update(ctx, adj); err != nil {
		s.Logger.Errorw("failed to mark refund as failed",
			"error", err,
			"adjustment_id", adj.ID,
		)
	}

	s.Logger.Warnw("refund failed",
		"error", cause,
		"order_id", o.ID,
		"adjustment_id", adj.ID,
	)

	activitySvc := NewActivityService(s.ServiceParams)
	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		OrderID:     o.ID,
		Type:        types.ActivityTypeRefundFailed,
		Description: fmt.Sprintf("refund of %s failed", adj.DifferenceAmount.Abs().StringFixed(2)),
		Metadata: map[string]interface{}{
			"adjustment_id":  adj.ID,
			"failure_reason": adj.FailureReason,
		},
		After: adj,
	})
}
