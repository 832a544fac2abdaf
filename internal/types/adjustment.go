package types

import (
	"github.com/samber/lo"

	ierr "github.com/pharmalink/ledger/internal/errors"
)

type AdjustmentType string

const (
	AdjustmentTypeAdditionalPayment AdjustmentType = "additional_payment"
	AdjustmentTypePartialRefund     AdjustmentType = "partial_refund"
	AdjustmentTypeFullRefund        AdjustmentType = "full_refund"
	AdjustmentTypeCreditMemoIssued  AdjustmentType = "credit_memo_issued"
	AdjustmentTypeCreditMemoApplied AdjustmentType = "credit_memo_applied"
	AdjustmentTypeOrderModification AdjustmentType = "order_modification"
	AdjustmentTypeNoChange          AdjustmentType = "no_change"
)

// IsRefund reports whether the adjustment returns money to the customer.
func (t AdjustmentType) IsRefund() bool {
	return t == AdjustmentTypePartialRefund || t == AdjustmentTypeFullRefund
}

type RefundMethod string

const (
	RefundMethodOriginalPayment RefundMethod = "original_payment"
	RefundMethodCreditMemo      RefundMethod = "credit_memo"
)

func (m RefundMethod) Validate() error {
	allowed := []RefundMethod{RefundMethodOriginalPayment, RefundMethodCreditMemo}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid refund method").
			WithHint("Refund method must be original_payment or credit_memo").
			WithReportableDetails(map[string]any{
				"refund_method": m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type CreditMemoStatus string

const (
	CreditMemoStatusIssued           CreditMemoStatus = "issued"
	CreditMemoStatusPartiallyApplied CreditMemoStatus = "partially_applied"
	CreditMemoStatusFullyApplied     CreditMemoStatus = "fully_applied"
)

type AccountTransactionType string

const (
	AccountTransactionTypeDebit  AccountTransactionType = "debit"
	AccountTransactionTypeCredit AccountTransactionType = "credit"
)

func (t AccountTransactionType) Validate() error {
	if t != AccountTransactionTypeDebit && t != AccountTransactionTypeCredit {
		return ierr.NewError("invalid account transaction type").
			WithHint("Transaction type must be debit or credit").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AccountReferenceType names the document an account transaction points at.
type AccountReferenceType string

const (
	AccountReferenceTypeOrder      AccountReferenceType = "order"
	AccountReferenceTypeInvoice    AccountReferenceType = "invoice"
	AccountReferenceTypeAdjustment AccountReferenceType = "payment_adjustment"
	AccountReferenceTypeCreditMemo AccountReferenceType = "credit_memo"
)
