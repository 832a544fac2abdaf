package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/reward"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type RewardService = interfaces.RewardService

type rewardService struct {
	ServiceParams
}

func NewRewardService(params ServiceParams) RewardService {
	return &rewardService{
		ServiceParams: params,
	}
}

// PointsEarned is floor(amountPaid * earnRate)
func PointsEarned(amountPaid, earnRate decimal.Decimal) int64 {
	if !amountPaid.IsPositive() || !earnRate.IsPositive() {
		return 0
	}
	return amountPaid.Mul(earnRate).Floor().IntPart()
}

// PointsValue converts points to currency at pointValue
func PointsValue(points int64, pointValue decimal.Decimal) decimal.Decimal {
	return types.RoundToCurrencyPrecision(decimal.NewFromInt(points).Mul(pointValue), types.DefaultCurrency)
}

func (s *rewardService) AwardPoints(ctx context.Context, customerID, orderID string, amountPaid decimal.Decimal) (int64, error) {
	points := PointsEarned(amountPaid, s.Config.Rewards.EarnRate)
	if points <= 0 {
		return 0, nil
	}

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.CustomerRepo.AdjustRewardPoints(txCtx, customerID, points); err != nil {
			return err
		}
		return s.RewardRepo.CreateEntry(txCtx, &reward.LedgerEntry{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REWARD_LEDGER),
			CustomerID:  customerID,
			EntryType:   types.RewardEntryTypeEarn,
			Points:      points,
			OrderID:     orderID,
			Description: fmt.Sprintf("earned on %s paid", amountPaid.StringFixed(2)),
			BaseModel:   types.GetDefaultBaseModel(txCtx),
		})
	})
	if err != nil {
		return 0, err
	}

	s.Logger.Infow("awarded reward points",
		"customer_id", customerID,
		"order_id", orderID,
		"points", points,
	)
	return points, nil
}

// RedeemPoints spends points up front for a voucher a later checkout can use
func (s *rewardService) RedeemPoints(ctx context.Context, customerID string, req dto.RedeemRewardRequest) (*dto.RedemptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	value := PointsValue(req.Points, s.Config.Rewards.PointValue)
	if !value.IsPositive() {
		return nil, ierr.NewError("redemption has no value").
			WithHint("Redeem more points to get a voucher").
			WithReportableDetails(map[string]any{"points": req.Points}).
			Mark(ierr.ErrValidation)
	}

	var redemption *reward.Redemption
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.CustomerRepo.AdjustRewardPoints(txCtx, customerID, -req.Points); err != nil {
			return err
		}
		if err := s.RewardRepo.CreateEntry(txCtx, &reward.LedgerEntry{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REWARD_LEDGER),
			CustomerID:  customerID,
			EntryType:   types.RewardEntryTypeRedeem,
			Points:      req.Points,
			Description: fmt.Sprintf("redeemed for a %s voucher", value.StringFixed(2)),
			BaseModel:   types.GetDefaultBaseModel(txCtx),
		}); err != nil {
			return err
		}

		redemption = &reward.Redemption{
			ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REWARD_REDEMPTION),
			CustomerID:       customerID,
			Value:            value,
			PointsSpent:      req.Points,
			RedemptionStatus: types.RewardRedemptionStatusRedeemed,
			BaseModel:        types.GetDefaultBaseModel(txCtx),
		}
		return s.RewardRepo.CreateRedemption(txCtx, redemption)
	})
	if err != nil {
		return nil, err
	}

	return &dto.RedemptionResponse{Redemption: redemption}, nil
}

func (s *rewardService) GetLedger(ctx context.Context, customerID string) (*dto.RewardLedgerResponse, error) {
	cust, err := s.CustomerRepo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	entries, err := s.RewardRepo.ListEntries(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &dto.RewardLedgerResponse{
		Balance: cust.RewardPoints,
		Items:   entries,
	}, nil
}
