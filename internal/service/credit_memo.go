package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/creditmemo"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/order"
	"github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type CreditMemoService = interfaces.CreditMemoService

type creditMemoService struct {
	ServiceParams
}

func NewCreditMemoService(params ServiceParams) CreditMemoService {
	return &creditMemoService{
		ServiceParams: params,
	}
}

// IssueCreditMemo stores value owed to the customer and credits their account.
// A memo tied to an order also leaves a credit_memo_issued adjustment on it.
func (s *creditMemoService) IssueCreditMemo(ctx context.Context, req dto.IssueCreditMemoRequest) (*dto.CreditMemoResponse, error) {
	return s.issue(ctx, req, true)
}

func (s *creditMemoService) issue(ctx context.Context, req dto.IssueCreditMemoRequest, withAdjustment bool) (*dto.CreditMemoResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	var o *order.Order
	if req.OrderID != "" {
		var err error
		o, err = s.OrderRepo.Get(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		if o.CustomerID != req.CustomerID {
			return nil, ierr.NewError("order belongs to another customer").
				WithHint("A credit memo can only reference the customer's own orders").
				WithReportableDetails(map[string]any{
					"order_id":    o.ID,
					"customer_id": req.CustomerID,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	amount := types.RoundToCurrencyPrecision(req.Amount, types.DefaultCurrency)
	memo := &creditmemo.CreditMemo{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_MEMO),
		MemoNumber:    types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_CREDIT_MEMO),
		CustomerID:    req.CustomerID,
		OrderID:       req.OrderID,
		Amount:        amount,
		AppliedAmount: decimal.Zero,
		Balance:       amount,
		MemoStatus:    types.CreditMemoStatusIssued,
		Reason:        req.Reason,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	resp := &dto.CreditMemoResponse{Memo: memo}
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.CreditMemoRepo.Create(txCtx, memo); err != nil {
			return err
		}

		if o != nil && withAdjustment {
			adj := memoAdjustment(txCtx, o, types.AdjustmentTypeCreditMemoIssued, amount, memo, req.Reason)
			if err := NewPaymentAdjustmentService(s.ServiceParams).RecordAdjustment(txCtx, adj); err != nil {
				return err
			}
			resp.Adjustment = adj
		}

		accountSvc := NewAccountTransactionService(s.ServiceParams)
		_, err := accountSvc.AppendTransaction(txCtx, dto.AccountTransactionRequest{
			CustomerID:    memo.CustomerID,
			Type:          types.AccountTransactionTypeCredit,
			Amount:        amount,
			ReferenceType: types.AccountReferenceTypeCreditMemo,
			ReferenceID:   memo.ID,
			Description:   fmt.Sprintf("credit memo %s: %s", memo.MemoNumber, memo.Reason),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("issued credit memo",
		"memo_id", memo.ID,
		"memo_number", memo.MemoNumber,
		"customer_id", memo.CustomerID,
		"amount", memo.Amount,
	)

	activitySvc := NewActivityService(s.ServiceParams)
	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		OrderID:     memo.OrderID,
		Type:        types.ActivityTypeCreditMemoIssued,
		Description: fmt.Sprintf("credit memo %s issued for %s", memo.MemoNumber, amount.StringFixed(2)),
		Metadata: map[string]interface{}{
			"memo_id":     memo.ID,
			"customer_id": memo.CustomerID,
			"amount":      amount,
		},
		After: memo,
	})

	return resp, nil
}

// ApplyCreditMemo draws from a memo's balance. The draw can target an order,
// which records a credit_memo_applied adjustment, or an invoice, which is
// paid down by the drawn amount.
func (s *creditMemoService) ApplyCreditMemo(ctx context.Context, memoID string, req dto.ApplyCreditMemoRequest) (*dto.CreditMemoResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount := types.RoundToCurrencyPrecision(req.Amount, types.DefaultCurrency)
	resp := &dto.CreditMemoResponse{}
	var targetOrderID string

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.DB.LockKey(txCtx, types.NewLockRequest(txCtx, types.LockScopeCreditMemo, map[string]interface{}{
			"memo_id": memoID,
		})); err != nil {
			return err
		}

		memo, err := s.CreditMemoRepo.Get(txCtx, memoID)
		if err != nil {
			return err
		}

		var inv *invoice.Invoice
		if req.InvoiceID != "" {
			inv, err = s.loadInvoiceTarget(txCtx, memo, req.InvoiceID, amount)
			if err != nil {
				return err
			}
		}

		var o *order.Order
		targetOrderID = req.OrderID
		if inv != nil {
			targetOrderID = inv.OrderID
		}
		if targetOrderID != "" {
			o, err = s.OrderRepo.Get(txCtx, targetOrderID)
			if err != nil {
				return err
			}
			if o.CustomerID != memo.CustomerID {
				return ierr.NewError("order belongs to another customer").
					WithHint("A credit memo can only be applied to the customer's own orders").
					WithReportableDetails(map[string]any{
						"memo_id":  memo.ID,
						"order_id": o.ID,
					}).
					Mark(ierr.ErrValidation)
			}
		}

		memo, err = s.CreditMemoRepo.Apply(txCtx, memoID, amount)
		if err != nil {
			return err
		}
		resp.Memo = memo

		application := &creditmemo.Application{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_MEMO_APPLICATION),
			MemoID:    memo.ID,
			OrderID:   targetOrderID,
			InvoiceID: req.InvoiceID,
			Amount:    amount,
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		if err := s.CreditMemoRepo.CreateApplication(txCtx, application); err != nil {
			return err
		}
		resp.Application = application

		if inv != nil {
			if err := s.payInvoice(txCtx, inv, amount); err != nil {
				return err
			}
		}

		if o != nil {
			adj := memoAdjustment(txCtx, o, types.AdjustmentTypeCreditMemoApplied, amount, memo, "")
			if err := NewPaymentAdjustmentService(s.ServiceParams).RecordAdjustment(txCtx, adj); err != nil {
				return err
			}
			resp.Adjustment = adj
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("applied credit memo",
		"memo_id", resp.Memo.ID,
		"amount", amount,
		"balance", resp.Memo.Balance,
		"order_id", targetOrderID,
		"invoice_id", req.InvoiceID,
	)

	activitySvc := NewActivityService(s.ServiceParams)
	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		OrderID:     targetOrderID,
		Type:        types.ActivityTypeCreditMemoApplied,
		Description: fmt.Sprintf("credit memo %s applied for %s", resp.Memo.MemoNumber, amount.StringFixed(2)),
		Metadata: map[string]interface{}{
			"memo_id":    resp.Memo.ID,
			"invoice_id": req.InvoiceID,
			"amount":     amount,
			"balance":    resp.Memo.Balance,
		},
		After: resp.Memo,
	})

	return resp, nil
}

func (s *creditMemoService) loadInvoiceTarget(ctx context.Context, memo *creditmemo.CreditMemo, invoiceID string, amount decimal.Decimal) (*invoice.Invoice, error) {
	if err := s.DB.LockKey(ctx, types.NewLockRequest(ctx, types.LockScopeInvoice, map[string]interface{}{
		"invoice_id": invoiceID,
	})); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.CustomerID != memo.CustomerID {
		return nil, ierr.NewError("invoice belongs to another customer").
			WithHint("A credit memo can only be applied to the customer's own invoices").
			WithReportableDetails(map[string]any{
				"memo_id":    memo.ID,
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrValidation)
	}
	if !inv.InvoiceStatus.IsOutstanding() {
		return nil, ierr.NewError("invoice is not outstanding").
			WithHintf("Invoice %s is already %s", inv.InvoiceNumber, inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if amount.GreaterThan(inv.BalanceDue) {
		return nil, ierr.NewError("credit exceeds invoice balance").
			WithHintf("At most %s can be applied to invoice %s", inv.BalanceDue.StringFixed(2), inv.InvoiceNumber).
			WithReportableDetails(map[string]any{
				"amount":      amount,
				"balance_due": inv.BalanceDue,
			}).
			Mark(ierr.ErrValidation)
	}
	return inv, nil
}

func (s *creditMemoService) payInvoice(ctx context.Context, inv *invoice.Invoice, amount decimal.Decimal) error {
	release := applyInvoicePayment(ctx, inv, amount)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return err
	}
	return releaseInvoiceCredit(ctx, s.ServiceParams, inv, release)
}

func (s *creditMemoService) GetCreditMemo(ctx context.Context, id string) (*dto.CreditMemoResponse, error) {
	memo, err := s.CreditMemoRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CreditMemoResponse{Memo: memo}, nil
}

func (s *creditMemoService) ListCreditMemos(ctx context.Context, customerID string) (*dto.ListCreditMemosResponse, error) {
	items, err := s.CreditMemoRepo.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &dto.ListCreditMemosResponse{Items: items}, nil
}

// memoAdjustment records a memo against an order as a reduction of what is owed
func memoAdjustment(ctx context.Context, o *order.Order, adjType types.AdjustmentType, amount decimal.Decimal, memo *creditmemo.CreditMemo, reason string) *paymentadjustment.PaymentAdjustment {
	diff := amount.Neg()
	return &paymentadjustment.PaymentAdjustment{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_ADJUSTMENT),
		OrderID:          o.ID,
		CustomerID:       o.CustomerID,
		AdjustmentType:   adjType,
		OriginalAmount:   o.TotalAmount,
		NewAmount:        o.TotalAmount.Add(diff),
		DifferenceAmount: diff,
		PaymentStatus:    types.PaymentStatusCompleted,
		RefundMethod:     types.RefundMethodCreditMemo,
		CreditMemoID:     memo.ID,
		Reason:           reason,
		Description:      describeAdjustment(adjType, o.OrderNumber, diff, reason),
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}
