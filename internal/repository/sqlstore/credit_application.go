package sqlstore

import (
	"context"

	domainApp "github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
)

type creditApplicationRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewCreditApplicationRepository(client *postgres.Client, log *logger.Logger) domainApp.Repository {
	return &creditApplicationRepository{client: client, log: log}
}

func (r *creditApplicationRepository) Create(ctx context.Context, app *domainApp.CreditApplication) error {
	if err := r.client.Writer(ctx).Create(app).Error; err != nil {
		return dbError(err, "Failed to create credit application", map[string]any{
			"application_id": app.ID,
			"customer_id":    app.CustomerID,
		})
	}
	return nil
}

func (r *creditApplicationRepository) Get(ctx context.Context, id string) (*domainApp.CreditApplication, error) {
	var app domainApp.CreditApplication
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, notFoundOr(err, "credit application", id)
	}
	return &app, nil
}

func (r *creditApplicationRepository) Update(ctx context.Context, app *domainApp.CreditApplication) error {
	touch(ctx, &app.BaseModel)
	if err := r.client.Writer(ctx).Save(app).Error; err != nil {
		return dbError(err, "Failed to update credit application", map[string]any{"application_id": app.ID})
	}
	return nil
}

func (r *creditApplicationRepository) List(ctx context.Context, filter *domainApp.Filter) ([]*domainApp.CreditApplication, error) {
	q := scoped(ctx, r.client.Reader(ctx))
	if filter == nil {
		filter = &domainApp.Filter{}
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("application_status IN ?", filter.Statuses)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at < ?", *filter.CreatedBefore)
	}

	var apps []*domainApp.CreditApplication
	if err := applyQueryFilter(q, filter.QueryFilter).Find(&apps).Error; err != nil {
		return nil, dbError(err, "Failed to list credit applications", nil)
	}
	return apps, nil
}
