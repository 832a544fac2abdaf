package offer

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// Offer is a promo code. UsageLimit zero means unlimited.
type Offer struct {
	ID             string                  `json:"id" gorm:"column:id;primaryKey"`
	Code           string                  `json:"code" gorm:"column:code;uniqueIndex;not null"`
	Description    string                  `json:"description,omitempty" gorm:"column:description"`
	DiscountType   types.OfferDiscountType `json:"discount_type" gorm:"column:discount_type;not null"`
	DiscountValue  decimal.Decimal         `json:"discount_value" gorm:"column:discount_value;type:numeric(20,4);not null"`
	MaxDiscount    *decimal.Decimal        `json:"max_discount,omitempty" gorm:"column:max_discount;type:numeric(20,2)"`
	MinOrderAmount decimal.Decimal         `json:"min_order_amount" gorm:"column:min_order_amount;type:numeric(20,2);not null;default:0"`
	UsageLimit     int                     `json:"usage_limit" gorm:"column:usage_limit;not null;default:0"`
	UsedCount      int                     `json:"used_count" gorm:"column:used_count;not null;default:0"`
	ValidFrom      *time.Time              `json:"valid_from,omitempty" gorm:"column:valid_from"`
	ValidUntil     *time.Time              `json:"valid_until,omitempty" gorm:"column:valid_until"`
	types.BaseModel
}

func (Offer) TableName() string { return string(types.TableNameOffers) }

// IsExhausted reports whether the usage counter reached the limit
func (o *Offer) IsExhausted() bool {
	return o.UsageLimit > 0 && o.UsedCount >= o.UsageLimit
}

// CheckApplicable validates the offer against an order without mutating it
func (o *Offer) CheckApplicable(subtotal decimal.Decimal, at time.Time) error {
	if o.Status != types.StatusPublished {
		return ierr.NewError("offer is not active").
			WithHint("This promo code is no longer available").
			WithReportableDetails(map[string]any{"offer_id": o.ID}).
			Mark(ierr.ErrValidation)
	}
	if o.ValidFrom != nil && at.Before(*o.ValidFrom) {
		return ierr.NewError("offer not yet valid").
			WithHint("This promo code is not active yet").
			WithReportableDetails(map[string]any{"offer_id": o.ID, "valid_from": o.ValidFrom}).
			Mark(ierr.ErrValidation)
	}
	if o.ValidUntil != nil && at.After(*o.ValidUntil) {
		return ierr.NewError("offer expired").
			WithHint("This promo code has expired").
			WithReportableDetails(map[string]any{"offer_id": o.ID, "valid_until": o.ValidUntil}).
			Mark(ierr.ErrValidation)
	}
	if subtotal.LessThan(o.MinOrderAmount) {
		return ierr.NewError("order below offer minimum").
			WithHintf("This promo code requires a minimum order of %s", o.MinOrderAmount.StringFixed(2)).
			WithReportableDetails(map[string]any{"offer_id": o.ID, "min_order_amount": o.MinOrderAmount}).
			Mark(ierr.ErrValidation)
	}
	if o.IsExhausted() {
		return ierr.NewError("offer usage limit reached").
			WithHint("This promo code has reached its usage limit").
			WithReportableDetails(map[string]any{"offer_id": o.ID, "usage_limit": o.UsageLimit}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CalculateDiscount returns the offer's value on subtotal before the payable cap
func (o *Offer) CalculateDiscount(subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch o.DiscountType {
	case types.OfferDiscountTypePercentage:
		amount = subtotal.Mul(o.DiscountValue).Div(decimal.NewFromInt(100))
	case types.OfferDiscountTypeFixed:
		amount = o.DiscountValue
	}
	if o.MaxDiscount != nil && amount.GreaterThan(*o.MaxDiscount) {
		amount = *o.MaxDiscount
	}
	return decimal.Max(decimal.Zero, amount)
}
