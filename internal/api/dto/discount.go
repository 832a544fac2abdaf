package dto

import (
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/discount"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
	"github.com/pharmalink/ledger/internal/validator"
)

// InstrumentRequest is the wire form of a discount instrument. Only the fields
// of the selected type are read.
type InstrumentRequest struct {
	Type         types.InstrumentType `json:"type" validate:"required"`
	PointsUsed   int64                `json:"points_used,omitempty"`
	OfferID      string               `json:"offer_id,omitempty"`
	MemoID       string               `json:"memo_id,omitempty"`
	Amount       *decimal.Decimal     `json:"amount,omitempty"`
	RedemptionID string               `json:"redemption_id,omitempty"`
}

// ToInstrument converts the request into the closed instrument union
func (r InstrumentRequest) ToInstrument() (discount.Instrument, error) {
	switch r.Type {
	case types.InstrumentTypeRewards:
		if r.PointsUsed <= 0 {
			return nil, ierr.NewError("points_used must be positive").
				WithHint("Reward points to use must be greater than zero").
				Mark(ierr.ErrValidation)
		}
		return discount.RewardsInstrument{PointsUsed: r.PointsUsed}, nil
	case types.InstrumentTypePromo:
		if r.OfferID == "" {
			return nil, ierr.NewError("offer_id is required").
				WithHint("Promo instrument must reference an offer").
				Mark(ierr.ErrValidation)
		}
		return discount.PromoInstrument{OfferID: r.OfferID}, nil
	case types.InstrumentTypeCreditMemo:
		if r.MemoID == "" || r.Amount == nil || !r.Amount.IsPositive() {
			return nil, ierr.NewError("memo_id and a positive amount are required").
				WithHint("Credit memo instrument must reference a memo and an amount").
				Mark(ierr.ErrValidation)
		}
		return discount.CreditMemoInstrument{MemoID: r.MemoID, Amount: *r.Amount}, nil
	case types.InstrumentTypeRedeemedReward:
		if r.RedemptionID == "" {
			return nil, ierr.NewError("redemption_id is required").
				WithHint("Redeemed reward instrument must reference a redemption").
				Mark(ierr.ErrValidation)
		}
		return discount.RedeemedRewardInstrument{RedemptionID: r.RedemptionID}, nil
	default:
		return nil, ierr.NewError("unknown instrument type").
			WithHintf("Unsupported discount instrument type %q", r.Type).
			WithReportableDetails(map[string]any{"type": r.Type}).
			Mark(ierr.ErrValidation)
	}
}

// ToInstruments converts a list preserving caller order
func ToInstruments(reqs []InstrumentRequest) ([]discount.Instrument, error) {
	instruments := make([]discount.Instrument, 0, len(reqs))
	for _, r := range reqs {
		inst, err := r.ToInstrument()
		if err != nil {
			return nil, err
		}
		instruments = append(instruments, inst)
	}
	return instruments, nil
}

type ComputeDiscountsRequest struct {
	CustomerID  string              `json:"customer_id" validate:"required"`
	Subtotal    decimal.Decimal     `json:"subtotal" validate:"decimal_gte0"`
	Tax         decimal.Decimal     `json:"tax" validate:"decimal_gte0"`
	Shipping    decimal.Decimal     `json:"shipping" validate:"decimal_gte0"`
	Instruments []InstrumentRequest `json:"instruments" validate:"dive"`
}

func (r *ComputeDiscountsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	_, err := ToInstruments(r.Instruments)
	return err
}

type ComputeDiscountsResponse struct {
	discount.Result
}

type CommitDiscountsResponse struct {
	OrderID   string   `json:"order_id"`
	Committed []string `json:"committed"`
	Skipped   []string `json:"skipped"`
}
