package sqlstore

import (
	"context"

	"gorm.io/gorm"

	domainCustomer "github.com/pharmalink/ledger/internal/domain/customer"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
)

type customerRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewCustomerRepository(client *postgres.Client, log *logger.Logger) domainCustomer.Repository {
	return &customerRepository{client: client, log: log}
}

func (r *customerRepository) Create(ctx context.Context, c *domainCustomer.Customer) error {
	span := StartRepositorySpan(ctx, "customer", "create", map[string]interface{}{"customer_id": c.ID})
	defer FinishSpan(span)

	if err := r.client.Writer(ctx).Create(c).Error; err != nil {
		SetSpanError(span, err)
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Customer already exists").
				WithReportableDetails(map[string]any{"customer_id": c.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return dbError(err, "Failed to create customer", map[string]any{"customer_id": c.ID})
	}
	SetSpanSuccess(span)
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*domainCustomer.Customer, error) {
	span := StartRepositorySpan(ctx, "customer", "get", map[string]interface{}{"customer_id": id})
	defer FinishSpan(span)

	var c domainCustomer.Customer
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&c).Error; err != nil {
		SetSpanError(span, err)
		return nil, notFoundOr(err, "customer", id)
	}
	SetSpanSuccess(span)
	return &c, nil
}

func (r *customerRepository) UpdateCreditProfile(ctx context.Context, id string, profile domainCustomer.CreditProfile) error {
	updates := updateAudit(ctx)
	updates["credit_approved"] = profile.CreditApproved
	updates["credit_limit"] = profile.CreditLimit
	updates["net_terms"] = profile.NetTerms
	updates["interest_rate"] = profile.InterestRate

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainCustomer.Customer{})).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return dbError(res.Error, "Failed to update customer credit profile", map[string]any{"customer_id": id})
	}
	if res.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "customer", id)
	}
	return nil
}

func (r *customerRepository) AdjustRewardPoints(ctx context.Context, id string, delta int64) error {
	updates := updateAudit(ctx)
	updates["reward_points"] = gorm.Expr("reward_points + ?", delta)

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainCustomer.Customer{})).
		Where("id = ? AND reward_points + ? >= 0", id, delta).
		Updates(updates)
	if res.Error != nil {
		return dbError(res.Error, "Failed to update reward points", map[string]any{"customer_id": id})
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ierr.NewError("insufficient reward points").
			WithHint("Customer does not have enough reward points").
			WithReportableDetails(map[string]any{
				"customer_id": id,
				"delta":       delta,
			}).
			Mark(ierr.ErrInsufficientBalance)
	}

	r.log.Debugw("adjusted reward points", "customer_id", id, "delta", delta)
	return nil
}
