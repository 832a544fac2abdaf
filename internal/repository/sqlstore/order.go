package sqlstore

import (
	"context"

	domainOrder "github.com/pharmalink/ledger/internal/domain/order"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
)

type orderRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewOrderRepository(client *postgres.Client, log *logger.Logger) domainOrder.Repository {
	return &orderRepository{client: client, log: log}
}

func (r *orderRepository) Create(ctx context.Context, o *domainOrder.Order) error {
	span := StartRepositorySpan(ctx, "order", "create", map[string]interface{}{"order_id": o.ID})
	defer FinishSpan(span)

	r.log.Debugw("creating order",
		"order_id", o.ID,
		"customer_id", o.CustomerID,
		"total_amount", o.TotalAmount,
		"payment_method", o.PaymentMethod,
	)

	if err := r.client.Writer(ctx).Create(o).Error; err != nil {
		SetSpanError(span, err)
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Order already exists").
				WithReportableDetails(map[string]any{"order_id": o.ID, "order_number": o.OrderNumber}).
				Mark(ierr.ErrAlreadyExists)
		}
		return dbError(err, "Failed to create order", map[string]any{"order_id": o.ID})
	}
	SetSpanSuccess(span)
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*domainOrder.Order, error) {
	var o domainOrder.Order
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, notFoundOr(err, "order", id)
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, filter *domainOrder.Filter) ([]*domainOrder.Order, error) {
	q := scoped(ctx, r.client.Reader(ctx))
	if filter == nil {
		filter = &domainOrder.Filter{}
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var orders []*domainOrder.Order
	if err := applyQueryFilter(q, filter.QueryFilter).Find(&orders).Error; err != nil {
		return nil, dbError(err, "Failed to list orders", nil)
	}
	return orders, nil
}
