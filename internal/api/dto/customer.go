package dto

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/customer"
	"github.com/pharmalink/ledger/internal/domain/offer"
	"github.com/pharmalink/ledger/internal/domain/reward"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
	"github.com/pharmalink/ledger/internal/validator"
)

type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateCustomerRequest) ToCustomer(ctx context.Context) *customer.Customer {
	return &customer.Customer{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:      r.Name,
		Email:     strings.ToLower(r.Email),
		Phone:     r.Phone,
		NetTerms:  int(types.DefaultNetTerms),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

type CustomerResponse struct {
	*customer.Customer
}

type CreateOfferRequest struct {
	Code           string                  `json:"code" validate:"required"`
	Description    string                  `json:"description,omitempty"`
	DiscountType   types.OfferDiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue  decimal.Decimal         `json:"discount_value" validate:"decimal_gt0"`
	MaxDiscount    *decimal.Decimal        `json:"max_discount,omitempty" validate:"omitempty,decimal_gt0"`
	MinOrderAmount decimal.Decimal         `json:"min_order_amount" validate:"decimal_gte0"`
	UsageLimit     int                     `json:"usage_limit" validate:"min=0"`
	ValidFrom      *time.Time              `json:"valid_from,omitempty"`
	ValidUntil     *time.Time              `json:"valid_until,omitempty"`
}

func (r *CreateOfferRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.DiscountType == types.OfferDiscountTypePercentage && r.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("percentage discount cannot exceed 100").
			WithHint("Percentage offers must be between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	if r.ValidFrom != nil && r.ValidUntil != nil && r.ValidUntil.Before(*r.ValidFrom) {
		return ierr.NewError("valid_until is before valid_from").
			WithHint("Offer end date must be after its start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateOfferRequest) ToOffer(ctx context.Context) *offer.Offer {
	return &offer.Offer{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OFFER),
		Code:           strings.ToUpper(strings.TrimSpace(r.Code)),
		Description:    r.Description,
		DiscountType:   r.DiscountType,
		DiscountValue:  r.DiscountValue,
		MaxDiscount:    r.MaxDiscount,
		MinOrderAmount: r.MinOrderAmount,
		UsageLimit:     r.UsageLimit,
		ValidFrom:      r.ValidFrom,
		ValidUntil:     r.ValidUntil,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

type OfferResponse struct {
	*offer.Offer
}

// RedeemRewardRequest converts points into a voucher usable at a later checkout
type RedeemRewardRequest struct {
	Points int64 `json:"points" validate:"min=1"`
}

func (r *RedeemRewardRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type RedemptionResponse struct {
	*reward.Redemption
}

type RewardLedgerResponse struct {
	Balance int64                 `json:"balance"`
	Items   []*reward.LedgerEntry `json:"items"`
}
