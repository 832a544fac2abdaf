package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type PaymentAdjustmentService = interfaces.PaymentAdjustmentService

type paymentAdjustmentService struct {
	ServiceParams
}

func NewPaymentAdjustmentService(params ServiceParams) PaymentAdjustmentService {
	return &paymentAdjustmentService{
		ServiceParams: params,
	}
}

// ClassifyAdjustment compares a revised amount with the original total
func (s *paymentAdjustmentService) ClassifyAdjustment(originalAmount, newAmount decimal.Decimal) paymentadjustment.Classification {
	return ClassifyAdjustment(originalAmount, newAmount)
}

func ClassifyAdjustment(originalAmount, newAmount decimal.Decimal) paymentadjustment.Classification {
	diff := types.RoundToCurrencyPrecision(newAmount.Sub(originalAmount), types.DefaultCurrency)
	c := paymentadjustment.Classification{DifferenceAmount: diff}
	switch {
	case diff.IsPositive():
		c.AdjustmentType = types.AdjustmentTypeAdditionalPayment
	case diff.IsNegative():
		c.AdjustmentType = types.AdjustmentTypePartialRefund
	default:
		c.AdjustmentType = types.AdjustmentTypeNoChange
	}
	return c
}

// describeAdjustment renders the human readable line shown on statements
func describeAdjustment(adjType types.AdjustmentType, orderNumber string, diff decimal.Decimal, reason string) string {
	amount := diff.Abs().StringFixed(2)
	switch adjType {
	case types.AdjustmentTypeAdditionalPayment:
		return fmt.Sprintf("Additional payment of %s on order %s: %s", amount, orderNumber, reason)
	case types.AdjustmentTypePartialRefund:
		return fmt.Sprintf("Partial refund of %s on order %s: %s", amount, orderNumber, reason)
	case types.AdjustmentTypeFullRefund:
		return fmt.Sprintf("Full refund of %s on order %s: %s", amount, orderNumber, reason)
	case types.AdjustmentTypeCreditMemoIssued:
		return fmt.Sprintf("Credit memo of %s issued for order %s: %s", amount, orderNumber, reason)
	case types.AdjustmentTypeCreditMemoApplied:
		return fmt.Sprintf("Credit memo of %s applied to order %s", amount, orderNumber)
	default:
		return fmt.Sprintf("Adjustment of %s on order %s: %s", amount, orderNumber, reason)
	}
}

// CreateAdjustment records a revised amount for a settled order. Additional
// payments raise the customer's receivable; reductions are booked as refunds.
func (s *paymentAdjustmentService) CreateAdjustment(ctx context.Context, orderID string, req dto.CreateAdjustmentRequest) (*dto.AdjustmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o, err := s.OrderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	newAmount := types.RoundToCurrencyPrecision(req.NewAmount, o.Currency)
	var adj *paymentadjustment.PaymentAdjustment

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.DB.LockKey(txCtx, types.NewLockRequest(txCtx, types.LockScopeOrder, map[string]interface{}{
			"order_id": o.ID,
		})); err != nil {
			return err
		}

		current, err := s.currentAmount(txCtx, o.ID, o.TotalAmount)
		if err != nil {
			return err
		}

		c := ClassifyAdjustment(current, newAmount)
		if c.AdjustmentType == types.AdjustmentTypeNoChange {
			return ierr.NewError("adjustment does not change the order total").
				WithHint("The new amount equals the current order total").
				WithReportableDetails(map[string]any{
					"order_id":       orderID,
					"current_amount": current,
				}).
				Mark(ierr.ErrValidation)
		}

		adj = &paymentadjustment.PaymentAdjustment{
			ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_ADJUSTMENT),
			OrderID:              o.ID,
			CustomerID:           o.CustomerID,
			AdjustmentType:       c.AdjustmentType,
			OriginalAmount:       current,
			NewAmount:            newAmount,
			DifferenceAmount:     c.DifferenceAmount,
			PaymentStatus:        types.PaymentStatusPending,
			GatewayTransactionID: req.GatewayTransactionID,
			Reason:               req.Reason,
			Description:          describeAdjustment(c.AdjustmentType, o.OrderNumber, c.DifferenceAmount, req.Reason),
			BaseModel:            types.GetDefaultBaseModel(txCtx),
		}
		if req.GatewayTransactionID != "" {
			adj.PaymentStatus = types.PaymentStatusCompleted
		}

		if err := s.RecordAdjustment(txCtx, adj); err != nil {
			return err
		}
		if c.AdjustmentType != types.AdjustmentTypeAdditionalPayment {
			return nil
		}
		accountSvc := NewAccountTransactionService(s.ServiceParams)
		_, err = accountSvc.AppendTransaction(txCtx, dto.AccountTransactionRequest{
			CustomerID:    o.CustomerID,
			Type:          types.AccountTransactionTypeDebit,
			Amount:        c.DifferenceAmount,
			ReferenceType: types.AccountReferenceTypeAdjustment,
			ReferenceID:   adj.ID,
			Description:   adj.Description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logAdjustment(ctx, adj)
	return &dto.AdjustmentResponse{PaymentAdjustment: adj}, nil
}

// currentAmount is the order amount after the latest revision made through
// CreateAdjustment. Refunds and memo adjustments are tracked on their own and
// do not move it.
func (s *paymentAdjustmentService) currentAmount(ctx context.Context, orderID string, total decimal.Decimal) (decimal.Decimal, error) {
	adjs, err := s.PaymentAdjustmentRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	current := total
	for _, a := range adjs {
		if a.PaymentStatus == types.PaymentStatusFailed || a.RefundMethod != "" {
			continue
		}
		if a.AdjustmentType == types.AdjustmentTypeAdditionalPayment || a.AdjustmentType == types.AdjustmentTypePartialRefund {
			current = a.NewAmount
		}
	}
	return current, nil
}

// RecordAdjustment allocates ADJ-<year>-<n> and inserts the row
func (s *paymentAdjustmentService) RecordAdjustment(ctx context.Context, adj *paymentadjustment.PaymentAdjustment) error {
	if adj.ID == "" {
		adj.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_ADJUSTMENT)
	}
	if adj.TenantID == "" {
		adj.BaseModel = types.GetDefaultBaseModel(ctx)
	}

	year := adj.CreatedAt.UTC().Year()
	if adj.CreatedAt.IsZero() {
		year = time.Now().UTC().Year()
	}
	n, err := s.InvoiceSequenceRepo.Next(ctx, fmt.Sprintf("%s:%d", types.SequenceScopeAdjustment, year))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to allocate adjustment number").
			Mark(ierr.ErrDatabase)
	}
	adj.AdjustmentNumber = fmt.Sprintf("%s-%d-%d", types.AdjustmentNumberPrefix, year, n)

	if err := s.PaymentAdjustmentRepo.Create(ctx, adj); err != nil {
		return err
	}

	s.Logger.Infow("recorded payment adjustment",
		"adjustment_id", adj.ID,
		"adjustment_number", adj.AdjustmentNumber,
		"order_id", adj.OrderID,
		"type", adj.AdjustmentType,
		"difference", adj.DifferenceAmount,
	)
	return nil
}

func (s *paymentAdjustmentService) ListAdjustments(ctx context.Context, orderID string) (*dto.ListAdjustmentsResponse, error) {
	items, err := s.PaymentAdjustmentRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &dto.ListAdjustmentsResponse{Items: items}, nil
}

func (s *paymentAdjustmentService) logAdjustment(ctx context.Context, adj *paymentadjustment.PaymentAdjustment) {
	activitySvc := NewActivityService(s.ServiceParams)
	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		OrderID:     adj.OrderID,
		Type:        types.ActivityTypePaymentAdjusted,
		Description: adj.Description,
		Metadata: map[string]interface{}{
			"adjustment_id":     adj.ID,
			"adjustment_number": adj.AdjustmentNumber,
			"adjustment_type":   adj.AdjustmentType,
			"difference_amount": adj.DifferenceAmount,
		},
		After: adj,
	})
}
