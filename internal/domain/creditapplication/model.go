package creditapplication

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// TradeReference is a supplier the applicant already buys from on terms
type TradeReference struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// CreditApplication is a customer's request for a revolving credit line
type CreditApplication struct {
	ID                string                        `json:"id" gorm:"column:id;primaryKey"`
	CustomerID        string                        `json:"customer_id" gorm:"column:customer_id;index;not null"`
	RequestedAmount   decimal.Decimal               `json:"requested_amount" gorm:"column:requested_amount;type:numeric(20,2);not null"`
	BusinessInfo      map[string]string             `json:"business_info,omitempty" gorm:"column:business_info;serializer:json;type:text"`
	BankInfo          map[string]string             `json:"bank_info,omitempty" gorm:"column:bank_info;serializer:json;type:text"`
	TradeReferences   []TradeReference              `json:"trade_references,omitempty" gorm:"column:trade_references;serializer:json;type:text"`
	Signature         string                        `json:"signature,omitempty" gorm:"column:signature"`
	ApplicationStatus types.CreditApplicationStatus `json:"application_status" gorm:"column:application_status;index;not null"`
	ReviewedAt        *time.Time                    `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ReviewedBy        string                        `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ApprovedAmount    *decimal.Decimal              `json:"approved_amount,omitempty" gorm:"column:approved_amount;type:numeric(20,2)"`
	NetTerms          *int                          `json:"net_terms,omitempty" gorm:"column:net_terms"`
	InterestRate      *decimal.Decimal              `json:"interest_rate,omitempty" gorm:"column:interest_rate;type:numeric(10,4)"`
	RejectionReason   string                        `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`
	types.BaseModel
}

func (CreditApplication) TableName() string { return string(types.TableNameCreditApplications) }

func (a *CreditApplication) Validate() error {
	if a.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation)
	}
	if !a.RequestedAmount.IsPositive() {
		return ierr.NewError("requested amount must be positive").
			WithHint("Requested credit amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"requested_amount": a.RequestedAmount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
