package types

import (
	"github.com/samber/lo"

	ierr "github.com/pharmalink/ledger/internal/errors"
)

// InstrumentType names a discount source that can be stacked on an order.
type InstrumentType string

const (
	InstrumentTypeRewards        InstrumentType = "rewards"
	InstrumentTypePromo          InstrumentType = "promo"
	InstrumentTypeCreditMemo     InstrumentType = "credit_memo"
	InstrumentTypeRedeemedReward InstrumentType = "redeemed_reward"
)

func (t InstrumentType) Validate() error {
	allowed := []InstrumentType{
		InstrumentTypeRewards,
		InstrumentTypePromo,
		InstrumentTypeCreditMemo,
		InstrumentTypeRedeemedReward,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid discount instrument type").
			WithHint("Discount type must be rewards, promo, credit_memo or redeemed_reward").
			WithReportableDetails(map[string]any{
				"type": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type OfferDiscountType string

const (
	OfferDiscountTypePercentage OfferDiscountType = "percentage"
	OfferDiscountTypeFixed      OfferDiscountType = "fixed"
)

type RewardEntryType string

const (
	RewardEntryTypeEarn   RewardEntryType = "earn"
	RewardEntryTypeRedeem RewardEntryType = "redeem"
)

type RewardRedemptionStatus string

const (
	RewardRedemptionStatusRedeemed RewardRedemptionStatus = "redeemed"
	RewardRedemptionStatusUsed     RewardRedemptionStatus = "used"
	RewardRedemptionStatusExpired  RewardRedemptionStatus = "expired"
)
