package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/types"
)

// Invoice bills a settled order.
// BalanceDue = TotalAmount + PenaltyAmount - AmountPaid - CreditedAmount.
type Invoice struct {
	ID              string              `json:"id" gorm:"column:id;primaryKey"`
	InvoiceNumber   string              `json:"invoice_number" gorm:"column:invoice_number;uniqueIndex;not null"`
	OrderID         string              `json:"order_id" gorm:"column:order_id;uniqueIndex;not null"`
	CustomerID      string              `json:"customer_id" gorm:"column:customer_id;index;not null"`
	Amount          decimal.Decimal     `json:"amount" gorm:"column:amount;type:numeric(20,2);not null"`
	TaxAmount       decimal.Decimal     `json:"tax_amount" gorm:"column:tax_amount;type:numeric(20,2);not null"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount" gorm:"column:discount_amount;type:numeric(20,2);not null;default:0"`
	TotalAmount     decimal.Decimal     `json:"total_amount" gorm:"column:total_amount;type:numeric(20,2);not null"`
	AmountPaid      decimal.Decimal     `json:"amount_paid" gorm:"column:amount_paid;type:numeric(20,2);not null;default:0"`
	PenaltyAmount   decimal.Decimal     `json:"penalty_amount" gorm:"column:penalty_amount;type:numeric(20,2);not null;default:0"`
	CreditedAmount  decimal.Decimal     `json:"credited_amount" gorm:"column:credited_amount;type:numeric(20,2);not null;default:0"`
	BalanceDue      decimal.Decimal     `json:"balance_due" gorm:"column:balance_due;type:numeric(20,2);not null"`
	Currency        string              `json:"currency" gorm:"column:currency;not null"`
	DueDate         time.Time           `json:"due_date" gorm:"column:due_date;index;not null"`
	InvoiceStatus   types.InvoiceStatus `json:"invoice_status" gorm:"column:invoice_status;index;not null"`
	PaymentStatus   types.PaymentStatus `json:"payment_status" gorm:"column:payment_status;not null"`
	PaymentMethod   types.PaymentMethod `json:"payment_method" gorm:"column:payment_method;not null"`
	LastPenaltyDate *time.Time          `json:"last_penalty_date,omitempty" gorm:"column:last_penalty_date"`
	PaidAt          *time.Time          `json:"paid_at,omitempty" gorm:"column:paid_at"`
	types.BaseModel
}

func (Invoice) TableName() string { return string(types.TableNameInvoices) }

// RecomputeBalance derives BalanceDue from the billed, penalty, paid and
// credited amounts
func (i *Invoice) RecomputeBalance() {
	i.BalanceDue = i.BalanceWithPenalty(i.PenaltyAmount)
}

// BalanceWithPenalty is the balance due if penalty replaced the accrued one
func (i *Invoice) BalanceWithPenalty(penalty decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, i.TotalAmount.Add(penalty).Sub(i.AmountPaid).Sub(i.CreditedAmount))
}

// OutstandingPrincipal is the billed amount not yet paid or credited back.
// Payments settle principal before penalty.
func (i *Invoice) OutstandingPrincipal() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.TotalAmount.Sub(i.AmountPaid).Sub(i.CreditedAmount))
}

// DaysOverdue is the number of whole days past the due date at asOf
func (i *Invoice) DaysOverdue(asOf time.Time) int {
	if !asOf.After(i.DueDate) {
		return 0
	}
	return int(asOf.Sub(i.DueDate).Hours() / 24)
}

// Sequence is the per-key counter used to allocate document numbers
type Sequence struct {
	SequenceKey string    `json:"sequence_key" gorm:"column:sequence_key;primaryKey"`
	LastValue   int64     `json:"last_value" gorm:"column:last_value;not null"`
	TenantID    string    `json:"tenant_id" gorm:"column:tenant_id;primaryKey"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;not null"`
}

func (Sequence) TableName() string { return string(types.TableNameInvoiceSequences) }
