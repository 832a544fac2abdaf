package sqlstore

import (
	"context"
	"time"

	domainReward "github.com/pharmalink/ledger/internal/domain/reward"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

type rewardRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewRewardRepository(client *postgres.Client, log *logger.Logger) domainReward.Repository {
	return &rewardRepository{client: client, log: log}
}

func (r *rewardRepository) CreateEntry(ctx context.Context, e *domainReward.LedgerEntry) error {
	if err := r.client.Writer(ctx).Create(e).Error; err != nil {
		return dbError(err, "Failed to record reward ledger entry", map[string]any{"customer_id": e.CustomerID})
	}
	return nil
}

func (r *rewardRepository) ListEntries(ctx context.Context, customerID string) ([]*domainReward.LedgerEntry, error) {
	var entries []*domainReward.LedgerEntry
	if err := scoped(ctx, r.client.Reader(ctx)).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, dbError(err, "Failed to list reward ledger", map[string]any{"customer_id": customerID})
	}
	return entries, nil
}

func (r *rewardRepository) CreateRedemption(ctx context.Context, rd *domainReward.Redemption) error {
	if err := r.client.Writer(ctx).Create(rd).Error; err != nil {
		return dbError(err, "Failed to create reward redemption", map[string]any{"customer_id": rd.CustomerID})
	}
	return nil
}

func (r *rewardRepository) GetRedemption(ctx context.Context, id string) (*domainReward.Redemption, error) {
	var rd domainReward.Redemption
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&rd).Error; err != nil {
		return nil, notFoundOr(err, "reward redemption", id)
	}
	return &rd, nil
}

func (r *rewardRepository) MarkRedemptionUsed(ctx context.Context, id, orderID string, usedAt time.Time) error {
	updates := updateAudit(ctx)
	updates["redemption_status"] = types.RewardRedemptionStatusUsed
	updates["order_id"] = orderID
	updates["used_at"] = usedAt

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainReward.Redemption{})).
		Where("id = ? AND redemption_status = ?", id, types.RewardRedemptionStatusRedeemed).
		Updates(updates)
	if res.Error != nil {
		return dbError(res.Error, "Failed to mark redemption used", map[string]any{"redemption_id": id})
	}
	if res.RowsAffected == 0 {
		rd, err := r.GetRedemption(ctx, id)
		if err != nil {
			return err
		}
		return ierr.NewError("redemption is not available").
			WithHint("This reward voucher has already been used or expired").
			WithReportableDetails(map[string]any{
				"redemption_id": id,
				"status":        rd.RedemptionStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}
