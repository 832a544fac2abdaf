package sqlstore

import (
	"context"

	domainActivity "github.com/pharmalink/ledger/internal/domain/activity"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

type activityRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewActivityRepository(client *postgres.Client, log *logger.Logger) domainActivity.Repository {
	return &activityRepository{client: client, log: log}
}

func (r *activityRepository) Create(ctx context.Context, a *domainActivity.Activity) error {
	if err := r.client.Writer(ctx).Create(a).Error; err != nil {
		return dbError(err, "Failed to write activity", map[string]any{
			"order_id": a.OrderID,
			"type":     a.ActivityType,
		})
	}
	return nil
}

func (r *activityRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domainActivity.Activity, error) {
	var activities []*domainActivity.Activity
	if err := r.client.Reader(ctx).
		Where("tenant_id = ? AND order_id = ?", types.GetTenantID(ctx), orderID).
		Order("created_at ASC").
		Find(&activities).Error; err != nil {
		return nil, dbError(err, "Failed to list activities", map[string]any{"order_id": orderID})
	}
	return activities, nil
}
