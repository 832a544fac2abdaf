package creditmemo

import (
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/types"
)

// CreditMemo is stored value owed to a customer. AppliedAmount + Balance = Amount.
type CreditMemo struct {
	ID            string                 `json:"id" gorm:"column:id;primaryKey"`
	MemoNumber    string                 `json:"memo_number" gorm:"column:memo_number;uniqueIndex;not null"`
	CustomerID    string                 `json:"customer_id" gorm:"column:customer_id;index;not null"`
	OrderID       string                 `json:"order_id,omitempty" gorm:"column:order_id;index"`
	Amount        decimal.Decimal        `json:"amount" gorm:"column:amount;type:numeric(20,2);not null"`
	AppliedAmount decimal.Decimal        `json:"applied_amount" gorm:"column:applied_amount;type:numeric(20,2);not null;default:0"`
	Balance       decimal.Decimal        `json:"balance" gorm:"column:balance;type:numeric(20,2);not null"`
	MemoStatus    types.CreditMemoStatus `json:"memo_status" gorm:"column:memo_status;not null"`
	Reason        string                 `json:"reason" gorm:"column:reason"`
	types.BaseModel
}

func (CreditMemo) TableName() string { return string(types.TableNameCreditMemos) }

// StatusFor derives the memo status from its remaining balance
func StatusFor(amount, balance decimal.Decimal) types.CreditMemoStatus {
	switch {
	case balance.IsZero():
		return types.CreditMemoStatusFullyApplied
	case balance.LessThan(amount):
		return types.CreditMemoStatusPartiallyApplied
	default:
		return types.CreditMemoStatusIssued
	}
}

// Application records one draw against a memo
type Application struct {
	ID        string          `json:"id" gorm:"column:id;primaryKey"`
	MemoID    string          `json:"memo_id" gorm:"column:memo_id;index;not null"`
	OrderID   string          `json:"order_id,omitempty" gorm:"column:order_id"`
	InvoiceID string          `json:"invoice_id,omitempty" gorm:"column:invoice_id"`
	Amount    decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(20,2);not null"`
	types.BaseModel
}

func (Application) TableName() string { return string(types.TableNameCreditMemoApplications) }
