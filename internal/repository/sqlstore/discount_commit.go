package sqlstore

import (
	"context"

	domainDiscount "github.com/pharmalink/ledger/internal/domain/discount"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
)

type discountCommitRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewDiscountCommitRepository(client *postgres.Client, log *logger.Logger) domainDiscount.CommitRepository {
	return &discountCommitRepository{client: client, log: log}
}

func (r *discountCommitRepository) Create(ctx context.Context, c *domainDiscount.Commit) error {
	if err := r.client.Writer(ctx).Create(c).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Discount was already applied to this order").
				WithReportableDetails(map[string]any{
					"order_id":       c.OrderID,
					"instrument_ref": c.InstrumentRef,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return dbError(err, "Failed to record discount commit", map[string]any{"order_id": c.OrderID})
	}
	return nil
}

func (r *discountCommitRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domainDiscount.Commit, error) {
	var commits []*domainDiscount.Commit
	if err := scoped(ctx, r.client.Reader(ctx)).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&commits).Error; err != nil {
		return nil, dbError(err, "Failed to list discount commits", map[string]any{"order_id": orderID})
	}
	return commits, nil
}
