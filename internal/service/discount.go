package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/creditmemo"
	"github.com/pharmalink/ledger/internal/domain/discount"
	"github.com/pharmalink/ledger/internal/domain/order"
	"github.com/pharmalink/ledger/internal/domain/reward"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type DiscountService = interfaces.DiscountService

type discountService struct {
	ServiceParams
}

func NewDiscountService(params ServiceParams) DiscountService {
	return &discountService{
		ServiceParams: params,
	}
}

// ComputeDiscounts stacks instruments in caller order over a running remaining
// payable that starts at subtotal+tax+shipping. Nothing is mutated; sources are
// only read.
func (s *discountService) ComputeDiscounts(
	ctx context.Context,
	customerID string,
	subtotal, tax, shipping decimal.Decimal,
	instruments []discount.Instrument,
) (*discount.Result, error) {
	result := &discount.Result{
		DiscountAmount:  decimal.Zero,
		DiscountDetails: make([]discount.Detail, 0, len(instruments)),
	}
	if len(instruments) == 0 {
		return result, nil
	}

	cust, err := s.CustomerRepo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	remaining := subtotal.Add(tax).Add(shipping)
	availablePoints := cust.RewardPoints
	seen := make(map[string]struct{}, len(instruments))
	now := time.Now().UTC()

	for _, inst := range instruments {
		if !remaining.IsPositive() {
			break
		}

		var detail discount.Detail
		switch in := inst.(type) {
		case discount.RewardsInstrument:
			detail = s.rewardsDetail(customerID, in, availablePoints, remaining)
			availablePoints -= detail.PointsUsed
		case discount.PromoInstrument:
			detail, err = s.promoDetail(ctx, in, subtotal, remaining, now)
		case discount.CreditMemoInstrument:
			detail, err = s.creditMemoDetail(ctx, customerID, in, remaining)
		case discount.RedeemedRewardInstrument:
			detail, err = s.redeemedRewardDetail(ctx, customerID, in, remaining)
		default:
			err = ierr.NewError("unsupported discount instrument").
				WithHintf("Unsupported discount instrument type %q", inst.Type()).
				Mark(ierr.ErrValidation)
		}
		if err != nil {
			return nil, err
		}

		detail.Amount = types.RoundToCurrencyPrecision(detail.Amount, types.DefaultCurrency)
		if !detail.Amount.IsPositive() {
			continue
		}

		ref := detail.InstrumentRef()
		if _, dup := seen[ref]; dup {
			return nil, ierr.NewError("discount instrument used twice").
				WithHint("Each discount can only be applied once per order").
				WithReportableDetails(map[string]any{"instrument_ref": ref}).
				Mark(ierr.ErrValidation)
		}
		seen[ref] = struct{}{}

		remaining = remaining.Sub(detail.Amount)
		result.DiscountDetails = append(result.DiscountDetails, detail)
	}

	result.DiscountAmount = discount.SumDetails(result.DiscountDetails)
	return result, nil
}

func (s *discountService) rewardsDetail(customerID string, in discount.RewardsInstrument, availablePoints int64, remaining decimal.Decimal) discount.Detail {
	pointValue := s.Config.Rewards.PointValue
	detail := discount.Detail{
		Type:     types.InstrumentTypeRewards,
		SourceID: customerID,
		Amount:   decimal.Zero,
	}
	if !pointValue.IsPositive() {
		return detail
	}

	points := lo.Min([]int64{in.PointsUsed, availablePoints})
	if maxPoints := remaining.Div(pointValue).Floor().IntPart(); points > maxPoints {
		points = maxPoints
	}
	if points <= 0 {
		return detail
	}

	detail.PointsUsed = points
	detail.Amount = decimal.NewFromInt(points).Mul(pointValue)
	detail.Description = fmt.Sprintf("%d reward points", points)
	return detail
}

func (s *discountService) promoDetail(ctx context.Context, in discount.PromoInstrument, subtotal, remaining decimal.Decimal, at time.Time) (discount.Detail, error) {
	o, err := s.OfferRepo.Get(ctx, in.OfferID)
	if err != nil {
		return discount.Detail{}, err
	}
	if err := o.CheckApplicable(subtotal, at); err != nil {
		return discount.Detail{}, err
	}

	return discount.Detail{
		Type:        types.InstrumentTypePromo,
		SourceID:    o.ID,
		Amount:      decimal.Min(o.CalculateDiscount(subtotal), remaining),
		Code:        o.Code,
		Description: o.Description,
	}, nil
}

func (s *discountService) creditMemoDetail(ctx context.Context, customerID string, in discount.CreditMemoInstrument, remaining decimal.Decimal) (discount.Detail, error) {
	memo, err := s.CreditMemoRepo.Get(ctx, in.MemoID)
	if err != nil {
		return discount.Detail{}, err
	}
	if memo.CustomerID != customerID {
		return discount.Detail{}, ierr.NewError("credit memo belongs to another customer").
			WithHint("This credit memo cannot be used on this account").
			WithReportableDetails(map[string]any{"memo_id": memo.ID}).
			Mark(ierr.ErrValidation)
	}

	return discount.Detail{
		Type:        types.InstrumentTypeCreditMemo,
		SourceID:    memo.ID,
		Amount:      decimal.Min(in.Amount, memo.Balance, remaining),
		Code:        memo.MemoNumber,
		Description: memo.Reason,
	}, nil
}

func (s *discountService) redeemedRewardDetail(ctx context.Context, customerID string, in discount.RedeemedRewardInstrument, remaining decimal.Decimal) (discount.Detail, error) {
	rd, err := s.RewardRepo.GetRedemption(ctx, in.RedemptionID)
	if err != nil {
		return discount.Detail{}, err
	}
	if rd.CustomerID != customerID || rd.RedemptionStatus != types.RewardRedemptionStatusRedeemed {
		return discount.Detail{}, ierr.NewError("reward voucher is not usable").
			WithHint("This reward voucher was already used or belongs to another account").
			WithReportableDetails(map[string]any{
				"redemption_id": rd.ID,
				"status":        rd.RedemptionStatus,
			}).
			Mark(ierr.ErrValidation)
	}

	return discount.Detail{
		Type:        types.InstrumentTypeRedeemedReward,
		SourceID:    rd.ID,
		Amount:      decimal.Min(rd.Value, remaining),
		Description: "redeemed reward voucher",
	}, nil
}

// CommitDiscounts applies each discount line to its source once per order.
// The commit marker and the source mutation share a transaction, so a line
// that was committed before is skipped. Lines are independent: a failure on
// one does not stop the others; the first failure is returned with the result.
func (s *discountService) CommitDiscounts(ctx context.Context, orderID string, details []discount.Detail) (*dto.CommitDiscountsResponse, error) {
	resp := &dto.CommitDiscountsResponse{
		OrderID:   orderID,
		Committed: []string{},
		Skipped:   []string{},
	}
	if len(details) == 0 {
		return resp, nil
	}

	o, err := s.OrderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.DiscountCommitRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	done := lo.SliceToMap(existing, func(c *discount.Commit) (string, struct{}) {
		return c.InstrumentRef, struct{}{}
	})

	var firstErr error
	for _, d := range details {
		ref := d.InstrumentRef()
		if _, ok := done[ref]; ok {
			resp.Skipped = append(resp.Skipped, ref)
			continue
		}

		err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
			if err := s.DiscountCommitRepo.Create(txCtx, &discount.Commit{
				ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT_COMMIT),
				OrderID:        orderID,
				InstrumentRef:  ref,
				InstrumentType: d.Type,
				Amount:         d.Amount,
				BaseModel:      types.GetDefaultBaseModel(txCtx),
			}); err != nil {
				return err
			}
			return s.applyDetail(txCtx, o, d)
		})

		switch {
		case err == nil:
			resp.Committed = append(resp.Committed, ref)
			done[ref] = struct{}{}
		case ierr.IsAlreadyExists(err):
			resp.Skipped = append(resp.Skipped, ref)
		default:
			s.Logger.Errorw("failed to commit discount",
				"error", err,
				"order_id", orderID,
				"instrument_ref", ref,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return resp, firstErr
}

func (s *discountService) CommitOrderDiscounts(ctx context.Context, orderID string) (*dto.CommitDiscountsResponse, error) {
	o, err := s.OrderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.CommitDiscounts(ctx, orderID, o.DiscountDetails)
}

func (s *discountService) applyDetail(ctx context.Context, o *order.Order, d discount.Detail) error {
	switch d.Type {
	case types.InstrumentTypeRewards:
		if err := s.CustomerRepo.AdjustRewardPoints(ctx, o.CustomerID, -d.PointsUsed); err != nil {
			return err
		}
		return s.RewardRepo.CreateEntry(ctx, &reward.LedgerEntry{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REWARD_LEDGER),
			CustomerID:  o.CustomerID,
			EntryType:   types.RewardEntryTypeRedeem,
			Points:      d.PointsUsed,
			OrderID:     o.ID,
			Description: fmt.Sprintf("used on order %s", o.OrderNumber),
			BaseModel:   types.GetDefaultBaseModel(ctx),
		})
	case types.InstrumentTypePromo:
		return s.OfferRepo.IncrementUsage(ctx, d.SourceID)
	case types.InstrumentTypeCreditMemo:
		memo, err := s.CreditMemoRepo.Apply(ctx, d.SourceID, d.Amount)
		if err != nil {
			return err
		}
		if err := s.CreditMemoRepo.CreateApplication(ctx, &creditmemo.Application{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_MEMO_APPLICATION),
			MemoID:    d.SourceID,
			OrderID:   o.ID,
			Amount:    d.Amount,
			BaseModel: types.GetDefaultBaseModel(ctx),
		}); err != nil {
			return err
		}
		// the memo was credited to the account when issued; spending it
		// reverses that credit since the order total is already reduced
		accountSvc := NewAccountTransactionService(s.ServiceParams)
		_, err = accountSvc.AppendTransaction(ctx, dto.AccountTransactionRequest{
			CustomerID:    o.CustomerID,
			Type:          types.AccountTransactionTypeDebit,
			Amount:        d.Amount,
			ReferenceType: types.AccountReferenceTypeCreditMemo,
			ReferenceID:   memo.ID,
			Description:   fmt.Sprintf("credit memo %s spent on order %s", memo.MemoNumber, o.OrderNumber),
		})
		return err
	case types.InstrumentTypeRedeemedReward:
		return s.RewardRepo.MarkRedemptionUsed(ctx, d.SourceID, o.ID, time.Now().UTC())
	default:
		return ierr.NewError("unsupported discount line").
			WithReportableDetails(map[string]any{"type": d.Type}).
			Mark(ierr.ErrValidation)
	}
}
