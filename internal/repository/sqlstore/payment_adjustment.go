package sqlstore

import (
	"context"

	domainAdjustment "github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
)

type paymentAdjustmentRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewPaymentAdjustmentRepository(client *postgres.Client, log *logger.Logger) domainAdjustment.Repository {
	return &paymentAdjustmentRepository{client: client, log: log}
}

func (r *paymentAdjustmentRepository) Create(ctx context.Context, adj *domainAdjustment.PaymentAdjustment) error {
	if err := r.client.Writer(ctx).Create(adj).Error; err != nil {
		if postgres.IsUniqueViolation(err, "adjustment_number") {
			return ierr.WithError(err).
				WithHint("Adjustment number was allocated concurrently").
				WithReportableDetails(map[string]any{"adjustment_number": adj.AdjustmentNumber}).
				Mark(ierr.ErrConcurrencyConflict)
		}
		return dbError(err, "Failed to create payment adjustment", map[string]any{
			"order_id":          adj.OrderID,
			"adjustment_number": adj.AdjustmentNumber,
		})
	}
	return nil
}

func (r *paymentAdjustmentRepository) Get(ctx context.Context, id string) (*domainAdjustment.PaymentAdjustment, error) {
	var adj domainAdjustment.PaymentAdjustment
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&adj).Error; err != nil {
		return nil, notFoundOr(err, "payment adjustment", id)
	}
	return &adj, nil
}

func (r *paymentAdjustmentRepository) Update(ctx context.Context, adj *domainAdjustment.PaymentAdjustment) error {
	touch(ctx, &adj.BaseModel)
	if err := r.client.Writer(ctx).Save(adj).Error; err != nil {
		return dbError(err, "Failed to update payment adjustment", map[string]any{"adjustment_id": adj.ID})
	}
	return nil
}

func (r *paymentAdjustmentRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domainAdjustment.PaymentAdjustment, error) {
	var adjs []*domainAdjustment.PaymentAdjustment
	if err := scoped(ctx, r.client.Reader(ctx)).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&adjs).Error; err != nil {
		return nil, dbError(err, "Failed to list payment adjustments", map[string]any{"order_id": orderID})
	}
	return adjs, nil
}
