package discount

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/types"
)

// Detail is one applied discount line stored on the order.
// SourceID is the customer id for rewards, otherwise the offer, memo or redemption id.
type Detail struct {
	Type        types.InstrumentType `json:"type"`
	SourceID    string               `json:"source_id"`
	Amount      decimal.Decimal      `json:"amount"`
	PointsUsed  int64                `json:"points_used,omitempty"`
	Code        string               `json:"code,omitempty"`
	Description string               `json:"description,omitempty"`
}

// InstrumentRef is the per-order idempotency key for committing this line
func (d Detail) InstrumentRef() string {
	return fmt.Sprintf("%s:%s", d.Type, d.SourceID)
}

// Result is the outcome of stacking instruments over a cart
type Result struct {
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountDetails []Detail        `json:"discount_details"`
}

// SumDetails adds up the detail amounts
func SumDetails(details []Detail) decimal.Decimal {
	return lo.Reduce(details, func(acc decimal.Decimal, d Detail, _ int) decimal.Decimal {
		return acc.Add(d.Amount)
	}, decimal.Zero)
}

// Commit marks that an order's discount line has mutated its source.
// (OrderID, InstrumentRef) is unique.
type Commit struct {
	ID             string               `json:"id" gorm:"column:id;primaryKey"`
	OrderID        string               `json:"order_id" gorm:"column:order_id;not null;uniqueIndex:idx_discount_commit_order_ref"`
	InstrumentRef  string               `json:"instrument_ref" gorm:"column:instrument_ref;not null;uniqueIndex:idx_discount_commit_order_ref"`
	InstrumentType types.InstrumentType `json:"instrument_type" gorm:"column:instrument_type;not null"`
	Amount         decimal.Decimal      `json:"amount" gorm:"column:amount;type:numeric(20,2);not null"`
	types.BaseModel
}

func (Commit) TableName() string { return string(types.TableNameDiscountCommits) }
