package customer

import (
	"github.com/shopspring/decimal"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// Customer is the pharmacy account profile. Credit fields mirror the active
// credit line so storefront reads do not need a join.
type Customer struct {
	ID             string          `json:"id" gorm:"column:id;primaryKey"`
	Name           string          `json:"name" gorm:"column:name;not null"`
	Email          string          `json:"email" gorm:"column:email"`
	Phone          string          `json:"phone,omitempty" gorm:"column:phone"`
	RewardPoints   int64           `json:"reward_points" gorm:"column:reward_points;not null;default:0"`
	CreditApproved bool            `json:"credit_approved" gorm:"column:credit_approved;not null;default:false"`
	CreditLimit    decimal.Decimal `json:"credit_limit" gorm:"column:credit_limit;type:numeric(20,2);not null;default:0"`
	NetTerms       int             `json:"net_terms,omitempty" gorm:"column:net_terms"`
	InterestRate   decimal.Decimal `json:"interest_rate" gorm:"column:interest_rate;type:numeric(10,4);not null;default:0"`
	types.BaseModel
}

func (Customer) TableName() string { return string(types.TableNameCustomers) }

func (c *Customer) Validate() error {
	if c.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Customer name is required").
			Mark(ierr.ErrValidation)
	}
	if c.RewardPoints < 0 {
		return ierr.NewError("reward points must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CreditProfile is the set of credit fields written on approval.
type CreditProfile struct {
	CreditApproved bool
	CreditLimit    decimal.Decimal
	NetTerms       int
	InterestRate   decimal.Decimal
}
