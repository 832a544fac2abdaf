package creditline

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// CreditLine is a customer's revolving trade credit.
// AvailableCredit always equals CreditLimit - UsedCredit and is never negative.
type CreditLine struct {
	ID               string                 `json:"id" gorm:"column:id;primaryKey"`
	CustomerID       string                 `json:"customer_id" gorm:"column:customer_id;uniqueIndex;not null"`
	CreditLimit      decimal.Decimal        `json:"credit_limit" gorm:"column:credit_limit;type:numeric(20,2);not null"`
	UsedCredit       decimal.Decimal        `json:"used_credit" gorm:"column:used_credit;type:numeric(20,2);not null;default:0"`
	AvailableCredit  decimal.Decimal        `json:"available_credit" gorm:"column:available_credit;type:numeric(20,2);not null"`
	NetTerms         int                    `json:"net_terms" gorm:"column:net_terms;not null"`
	InterestRate     decimal.Decimal        `json:"interest_rate" gorm:"column:interest_rate;type:numeric(10,4);not null"`
	CreditLineStatus types.CreditLineStatus `json:"credit_line_status" gorm:"column:credit_line_status;not null"`
	PaymentScore     int                    `json:"payment_score" gorm:"column:payment_score;not null;default:100"`
	ApplicationID    string                 `json:"application_id,omitempty" gorm:"column:application_id"`
	types.BaseModel
}

func (CreditLine) TableName() string { return string(types.TableNameCreditLines) }

// IsActive reports whether the line can be drawn on
func (l *CreditLine) IsActive() bool {
	return l.CreditLineStatus == types.CreditLineStatusActive
}

// Recompute derives AvailableCredit from limit and usage
func (l *CreditLine) Recompute() {
	l.AvailableCredit = decimal.Max(decimal.Zero, l.CreditLimit.Sub(l.UsedCredit))
}

func (l *CreditLine) Validate() error {
	if l.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			Mark(ierr.ErrValidation)
	}
	if l.CreditLimit.IsNegative() || l.UsedCredit.IsNegative() {
		return ierr.NewError("credit amounts must not be negative").
			WithReportableDetails(map[string]any{
				"credit_limit": l.CreditLimit,
				"used_credit":  l.UsedCredit,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := types.NetTerms(l.NetTerms).Validate(); err != nil {
		return err
	}
	if l.PaymentScore < 0 || l.PaymentScore > 100 {
		return ierr.NewError("payment score must be between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SentCreditTerms records the terms offered for an application and their acceptance
type SentCreditTerms struct {
	ID            string                  `json:"id" gorm:"column:id;primaryKey"`
	CustomerID    string                  `json:"customer_id" gorm:"column:customer_id;index;not null"`
	ApplicationID string                  `json:"application_id" gorm:"column:application_id;uniqueIndex;not null"`
	CreditLimit   decimal.Decimal         `json:"credit_limit" gorm:"column:credit_limit;type:numeric(20,2);not null"`
	NetTerms      int                     `json:"net_terms" gorm:"column:net_terms;not null"`
	InterestRate  decimal.Decimal         `json:"interest_rate" gorm:"column:interest_rate;type:numeric(10,4);not null"`
	TermsStatus   types.CreditTermsStatus `json:"terms_status" gorm:"column:terms_status;not null"`
	AcceptedAt    *time.Time              `json:"accepted_at,omitempty" gorm:"column:accepted_at"`
	types.BaseModel
}

func (SentCreditTerms) TableName() string { return string(types.TableNameSentCreditTerms) }
