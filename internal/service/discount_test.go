package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/customer"
	"github.com/pharmalink/ledger/internal/domain/discount"
	"github.com/pharmalink/ledger/internal/domain/offer"
	"github.com/pharmalink/ledger/internal/domain/order"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/testutil"
	"github.com/pharmalink/ledger/internal/types"
)

type DiscountServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	params   ServiceParams
	service  DiscountService
	testData struct {
		customer *customer.Customer
		percent  *offer.Offer
		fixed    *offer.Offer
	}
}

func TestDiscountService(t *testing.T) {
	suite.Run(t, new(DiscountServiceTestSuite))
}

func (s *DiscountServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewDiscountService(s.params)

	s.testData.customer = createTestCustomer(&s.BaseServiceTestSuite, "cust_discount", 300)

	maxDiscount := decimal.NewFromInt(15)
	s.testData.percent = &offer.Offer{
		ID:             "offer_percent",
		Code:           "TWENTY",
		DiscountType:   types.OfferDiscountTypePercentage,
		DiscountValue:  decimal.NewFromInt(20),
		MaxDiscount:    &maxDiscount,
		MinOrderAmount: decimal.NewFromInt(50),
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().OfferRepo.Create(s.GetContext(), s.testData.percent))

	s.testData.fixed = &offer.Offer{
		ID:            "offer_fixed",
		Code:          "FLAT40",
		DiscountType:  types.OfferDiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(40),
		UsageLimit:    1,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().OfferRepo.Create(s.GetContext(), s.testData.fixed))
}

func (s *DiscountServiceTestSuite) compute(subtotal int64, instruments ...discount.Instrument) (*discount.Result, error) {
	return s.service.ComputeDiscounts(s.GetContext(), s.testData.customer.ID,
		decimal.NewFromInt(subtotal), decimal.Zero, decimal.Zero, instruments)
}

func (s *DiscountServiceTestSuite) TestNoInstruments() {
	result, err := s.compute(100)
	s.Require().NoError(err)
	s.True(result.DiscountAmount.IsZero())
	s.Empty(result.DiscountDetails)
}

func (s *DiscountServiceTestSuite) TestPromoCappedByMaxDiscount() {
	result, err := s.compute(100, discount.PromoInstrument{OfferID: s.testData.percent.ID})
	s.Require().NoError(err)
	s.Require().Len(result.DiscountDetails, 1)
	s.True(decimal.NewFromInt(15).Equal(result.DiscountAmount))
	s.Equal("TWENTY", result.DiscountDetails[0].Code)
}

func (s *DiscountServiceTestSuite) TestStackingStopsAtPayable() {
	result, err := s.compute(50,
		discount.PromoInstrument{OfferID: s.testData.fixed.ID},
		discount.PromoInstrument{OfferID: s.testData.percent.ID},
		discount.RewardsInstrument{PointsUsed: 100},
	)
	s.Require().NoError(err)

	s.Require().Len(result.DiscountDetails, 2, "payable is exhausted before the rewards line")
	s.True(decimal.NewFromInt(40).Equal(result.DiscountDetails[0].Amount))
	s.True(decimal.NewFromInt(10).Equal(result.DiscountDetails[1].Amount), "capped at the remaining payable")
	s.True(decimal.NewFromInt(50).Equal(result.DiscountAmount))
}

func (s *DiscountServiceTestSuite) TestRewardsCappedByBalance() {
	result, err := s.compute(100, discount.RewardsInstrument{PointsUsed: 3000})
	s.Require().NoError(err)
	s.Require().Len(result.DiscountDetails, 1)
	s.Equal(int64(300), result.DiscountDetails[0].PointsUsed)
	s.True(decimal.NewFromInt(3).Equal(result.DiscountAmount))
}

func (s *DiscountServiceTestSuite) TestRewardsCappedByRemaining() {
	result, err := s.service.ComputeDiscounts(s.GetContext(), s.testData.customer.ID,
		decimal.NewFromFloat(1.50), decimal.Zero, decimal.Zero,
		[]discount.Instrument{discount.RewardsInstrument{PointsUsed: 300}})
	s.Require().NoError(err)
	s.Require().Len(result.DiscountDetails, 1)
	s.Equal(int64(150), result.DiscountDetails[0].PointsUsed)
	s.True(decimal.NewFromFloat(1.50).Equal(result.DiscountAmount))
}

func (s *DiscountServiceTestSuite) TestPromoBelowMinimum() {
	_, err := s.compute(20, discount.PromoInstrument{OfferID: s.testData.percent.ID})
	s.True(ierr.IsValidation(err))
}

func (s *DiscountServiceTestSuite) TestDuplicateInstrument() {
	_, err := s.compute(500,
		discount.PromoInstrument{OfferID: s.testData.percent.ID},
		discount.PromoInstrument{OfferID: s.testData.percent.ID},
	)
	s.True(ierr.IsValidation(err))
}

func (s *DiscountServiceTestSuite) TestCreditMemoOwnership() {
	other := createTestCustomer(&s.BaseServiceTestSuite, "cust_other", 0)
	memo, err := NewCreditMemoService(s.params).IssueCreditMemo(s.GetContext(), dto.IssueCreditMemoRequest{
		CustomerID: other.ID,
		Amount:     decimal.NewFromInt(25),
		Reason:     "goodwill",
	})
	s.Require().NoError(err)

	_, err = s.compute(100, discount.CreditMemoInstrument{MemoID: memo.Memo.ID, Amount: decimal.NewFromInt(10)})
	s.True(ierr.IsValidation(err))
}

func (s *DiscountServiceTestSuite) TestRedeemedRewardVoucher() {
	redemption, err := NewRewardService(s.params).RedeemPoints(s.GetContext(), s.testData.customer.ID, dto.RedeemRewardRequest{
		Points: 200,
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(2).Equal(redemption.Redemption.Value))

	result, err := s.compute(100, discount.RedeemedRewardInstrument{RedemptionID: redemption.Redemption.ID})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(2).Equal(result.DiscountAmount))
}

func (s *DiscountServiceTestSuite) storeOrder(details []discount.Detail) *order.Order {
	o := &order.Order{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		OrderNumber:     types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_ORDER),
		CustomerID:      s.testData.customer.ID,
		Subtotal:        decimal.NewFromInt(100),
		Tax:             decimal.Zero,
		Shipping:        decimal.Zero,
		DiscountAmount:  discount.SumDetails(details),
		DiscountDetails: details,
		Currency:        types.DefaultCurrency,
		PaymentMethod:   types.PaymentMethodManual,
		PaymentStatus:   types.PaymentStatusPending,
		OrderStatus:     types.OrderStatusNew,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	o.TotalAmount = o.GrossAmount().Sub(o.DiscountAmount)
	s.Require().NoError(s.GetStores().OrderRepo.Create(s.GetContext(), o))
	return o
}

func (s *DiscountServiceTestSuite) TestCommitIsIdempotent() {
	result, err := s.compute(100,
		discount.PromoInstrument{OfferID: s.testData.fixed.ID},
		discount.RewardsInstrument{PointsUsed: 100},
	)
	s.Require().NoError(err)
	o := s.storeOrder(result.DiscountDetails)

	first, err := s.service.CommitOrderDiscounts(s.GetContext(), o.ID)
	s.Require().NoError(err)
	s.Len(first.Committed, 2)
	s.Empty(first.Skipped)

	second, err := s.service.CommitDiscounts(s.GetContext(), o.ID, result.DiscountDetails)
	s.Require().NoError(err)
	s.Empty(second.Committed)
	s.Len(second.Skipped, 2)

	cust, err := s.GetStores().CustomerRepo.Get(s.GetContext(), s.testData.customer.ID)
	s.Require().NoError(err)
	s.Equal(int64(200), cust.RewardPoints, "points are deducted once")

	fixed, err := s.GetStores().OfferRepo.Get(s.GetContext(), s.testData.fixed.ID)
	s.Require().NoError(err)
	s.Equal(1, fixed.UsedCount)

	entries, err := s.GetStores().RewardRepo.ListEntries(s.GetContext(), s.testData.customer.ID)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *DiscountServiceTestSuite) TestCommitContinuesPastFailedLine() {
	details := []discount.Detail{
		{Type: types.InstrumentTypePromo, SourceID: "offer_missing", Amount: decimal.NewFromInt(5)},
		{Type: types.InstrumentTypeRewards, SourceID: s.testData.customer.ID, PointsUsed: 50, Amount: decimal.NewFromFloat(0.5)},
	}
	o := s.storeOrder(details)

	resp, err := s.service.CommitDiscounts(s.GetContext(), o.ID, details)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal([]string{details[1].InstrumentRef()}, resp.Committed)

	cust, err := s.GetStores().CustomerRepo.Get(s.GetContext(), s.testData.customer.ID)
	s.Require().NoError(err)
	s.Equal(int64(250), cust.RewardPoints)
}
