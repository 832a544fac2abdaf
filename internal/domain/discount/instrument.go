package discount

import (
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/types"
)

// Instrument is a discount source requested at checkout. The set of
// implementations is closed: RewardsInstrument, PromoInstrument,
// CreditMemoInstrument and RedeemedRewardInstrument.
type Instrument interface {
	Type() types.InstrumentType
	isInstrument()
}

// RewardsInstrument spends loyalty points from the customer's balance
type RewardsInstrument struct {
	PointsUsed int64
}

// PromoInstrument applies an offer code
type PromoInstrument struct {
	OfferID string
}

// CreditMemoInstrument draws down a stored credit memo balance
type CreditMemoInstrument struct {
	MemoID string
	Amount decimal.Decimal
}

// RedeemedRewardInstrument consumes a voucher redeemed earlier from points
type RedeemedRewardInstrument struct {
	RedemptionID string
}

func (RewardsInstrument) Type() types.InstrumentType        { return types.InstrumentTypeRewards }
func (PromoInstrument) Type() types.InstrumentType          { return types.InstrumentTypePromo }
func (CreditMemoInstrument) Type() types.InstrumentType     { return types.InstrumentTypeCreditMemo }
func (RedeemedRewardInstrument) Type() types.InstrumentType { return types.InstrumentTypeRedeemedReward }

func (RewardsInstrument) isInstrument()        {}
func (PromoInstrument) isInstrument()          {}
func (CreditMemoInstrument) isInstrument()     {}
func (RedeemedRewardInstrument) isInstrument() {}
