package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/accounttransaction"
	"github.com/pharmalink/ledger/internal/domain/creditmemo"
	"github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
	"github.com/pharmalink/ledger/internal/validator"
)

type CreateAdjustmentRequest struct {
	NewAmount            decimal.Decimal `json:"new_amount" validate:"decimal_gte0"`
	Reason               string          `json:"reason" validate:"required"`
	GatewayTransactionID string          `json:"gateway_transaction_id,omitempty"`
}

func (r *CreateAdjustmentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type AdjustmentResponse struct {
	*paymentadjustment.PaymentAdjustment
}

type ListAdjustmentsResponse struct {
	Items []*paymentadjustment.PaymentAdjustment `json:"items"`
}

type IssueCreditMemoRequest struct {
	CustomerID string          `json:"customer_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Reason     string          `json:"reason" validate:"required"`
	OrderID    string          `json:"order_id,omitempty"`
}

func (r *IssueCreditMemoRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ApplyCreditMemoRequest targets an order, an invoice, or neither
type ApplyCreditMemoRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	OrderID   string          `json:"order_id,omitempty"`
	InvoiceID string          `json:"invoice_id,omitempty"`
}

func (r *ApplyCreditMemoRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.OrderID != "" && r.InvoiceID != "" {
		return ierr.NewError("order_id and invoice_id are mutually exclusive").
			WithHint("Apply a credit memo to either an order or an invoice").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type CreditMemoResponse struct {
	Memo        *creditmemo.CreditMemo               `json:"memo"`
	Application *creditmemo.Application              `json:"application,omitempty"`
	Adjustment  *paymentadjustment.PaymentAdjustment `json:"adjustment,omitempty"`
}

type ListCreditMemosResponse struct {
	Items []*creditmemo.CreditMemo `json:"items"`
}

type CreateRefundRequest struct {
	Amount       decimal.Decimal    `json:"amount" validate:"decimal_gt0"`
	RefundMethod types.RefundMethod `json:"refund_method" validate:"required"`
	Reason       string             `json:"reason" validate:"required"`
}

func (r *CreateRefundRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if strings.TrimSpace(r.Reason) == "" {
		return ierr.NewError("reason is required").
			WithHint("Please provide a refund reason").
			Mark(ierr.ErrValidation)
	}
	return r.RefundMethod.Validate()
}

type RefundResponse struct {
	Adjustment *paymentadjustment.PaymentAdjustment `json:"adjustment"`
	CreditMemo *creditmemo.CreditMemo               `json:"credit_memo,omitempty"`
}

// AccountTransactionRequest appends one movement to a customer's receivable
type AccountTransactionRequest struct {
	CustomerID    string                       `json:"customer_id" validate:"required"`
	Type          types.AccountTransactionType `json:"type" validate:"required"`
	Amount        decimal.Decimal              `json:"amount" validate:"decimal_gt0"`
	ReferenceType types.AccountReferenceType   `json:"reference_type"`
	ReferenceID   string                       `json:"reference_id"`
	Description   string                       `json:"description"`
}

func (r *AccountTransactionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Type.Validate()
}

type ListAccountTransactionsResponse struct {
	Items   []*accounttransaction.AccountTransaction `json:"items"`
	Balance decimal.Decimal                          `json:"balance"`
}
