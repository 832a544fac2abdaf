package sqlstore

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domainCreditLine "github.com/pharmalink/ledger/internal/domain/creditline"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

type creditLineRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewCreditLineRepository(client *postgres.Client, log *logger.Logger) domainCreditLine.Repository {
	return &creditLineRepository{client: client, log: log}
}

func (r *creditLineRepository) Create(ctx context.Context, line *domainCreditLine.CreditLine) error {
	span := StartRepositorySpan(ctx, "credit_line", "create", map[string]interface{}{"customer_id": line.CustomerID})
	defer FinishSpan(span)

	if err := r.client.Writer(ctx).Create(line).Error; err != nil {
		SetSpanError(span, err)
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Customer already has a credit line").
				WithReportableDetails(map[string]any{"customer_id": line.CustomerID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return dbError(err, "Failed to create credit line", map[string]any{"customer_id": line.CustomerID})
	}
	SetSpanSuccess(span)
	return nil
}

func (r *creditLineRepository) Get(ctx context.Context, id string) (*domainCreditLine.CreditLine, error) {
	var line domainCreditLine.CreditLine
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&line).Error; err != nil {
		return nil, notFoundOr(err, "credit line", id)
	}
	return &line, nil
}

func (r *creditLineRepository) GetByCustomerID(ctx context.Context, customerID string) (*domainCreditLine.CreditLine, error) {
	var line domainCreditLine.CreditLine
	if err := scoped(ctx, r.client.Reader(ctx)).Where("customer_id = ?", customerID).First(&line).Error; err != nil {
		return nil, notFoundOr(err, "credit line for customer", customerID)
	}
	return &line, nil
}

func (r *creditLineRepository) UpdateTerms(ctx context.Context, line *domainCreditLine.CreditLine) (*domainCreditLine.CreditLine, error) {
	span := StartRepositorySpan(ctx, "credit_line", "update_terms", map[string]interface{}{
		"customer_id":  line.CustomerID,
		"credit_limit": line.CreditLimit.String(),
	})
	defer FinishSpan(span)

	updates := updateAudit(ctx)
	updates["credit_limit"] = line.CreditLimit
	updates["available_credit"] = gorm.Expr("? - used_credit", line.CreditLimit)
	updates["net_terms"] = line.NetTerms
	updates["interest_rate"] = line.InterestRate
	updates["credit_line_status"] = line.CreditLineStatus
	updates["application_id"] = line.ApplicationID

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainCreditLine.CreditLine{})).
		Where("customer_id = ?", line.CustomerID).
		Where("used_credit <= ?", line.CreditLimit).
		Updates(updates)
	if res.Error != nil {
		SetSpanError(span, res.Error)
		return nil, dbError(res.Error, "Failed to update credit line", map[string]any{"customer_id": line.CustomerID})
	}

	current, err := r.GetByCustomerID(ctx, line.CustomerID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, limitBelowUsage(current, line.CreditLimit)
	}

	SetSpanSuccess(span)
	return current, nil
}

func limitBelowUsage(line *domainCreditLine.CreditLine, limit decimal.Decimal) error {
	return ierr.NewError("credit limit below used credit").
		WithHintf("The new limit %s is below the %s already drawn", limit.StringFixed(2), line.UsedCredit.StringFixed(2)).
		WithReportableDetails(map[string]any{
			"customer_id":  line.CustomerID,
			"credit_limit": limit,
			"used_credit":  line.UsedCredit,
		}).
		Mark(ierr.ErrInvalidOperation)
}

func (r *creditLineRepository) IncrementUsage(ctx context.Context, customerID string, amount decimal.Decimal) (*domainCreditLine.CreditLine, error) {
	span := StartRepositorySpan(ctx, "credit_line", "increment_usage", map[string]interface{}{
		"customer_id": customerID,
		"amount":      amount.String(),
	})
	defer FinishSpan(span)

	updates := updateAudit(ctx)
	updates["used_credit"] = gorm.Expr("used_credit + ?", amount)
	updates["available_credit"] = gorm.Expr("available_credit - ?", amount)

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainCreditLine.CreditLine{})).
		Where("customer_id = ?", customerID).
		Where("credit_line_status = ?", types.CreditLineStatusActive).
		Where("available_credit >= ?", amount).
		Updates(updates)
	if res.Error != nil {
		SetSpanError(span, res.Error)
		return nil, dbError(res.Error, "Failed to record credit usage", map[string]any{"customer_id": customerID})
	}

	line, err := r.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 {
		if !line.IsActive() {
			return nil, ierr.NewError("credit line is not active").
				WithHint("The customer's credit line is suspended").
				WithReportableDetails(map[string]any{
					"customer_id": customerID,
					"status":      line.CreditLineStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		return nil, ierr.NewError("credit limit exceeded").
			WithHintf("Order amount %s exceeds available credit %s", amount.StringFixed(2), line.AvailableCredit.StringFixed(2)).
			WithReportableDetails(map[string]any{
				"customer_id":      customerID,
				"amount":           amount,
				"available_credit": line.AvailableCredit,
			}).
			Mark(ierr.ErrCreditLimitExceeded)
	}

	SetSpanSuccess(span)
	return line, nil
}

func (r *creditLineRepository) DecrementUsage(ctx context.Context, customerID string, amount decimal.Decimal) (*domainCreditLine.CreditLine, error) {
	// SET expressions all read the pre-update row
	updates := updateAudit(ctx)
	updates["used_credit"] = gorm.Expr("CASE WHEN used_credit > ? THEN used_credit - ? ELSE 0 END", amount, amount)
	updates["available_credit"] = gorm.Expr("CASE WHEN used_credit > ? THEN credit_limit - used_credit + ? ELSE credit_limit END", amount, amount)

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainCreditLine.CreditLine{})).
		Where("customer_id = ?", customerID).
		Updates(updates)
	if res.Error != nil {
		return nil, dbError(res.Error, "Failed to record credit repayment", map[string]any{"customer_id": customerID})
	}
	if res.RowsAffected == 0 {
		return nil, notFoundOr(gorm.ErrRecordNotFound, "credit line for customer", customerID)
	}
	return r.GetByCustomerID(ctx, customerID)
}

type creditTermsRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewCreditTermsRepository(client *postgres.Client, log *logger.Logger) domainCreditLine.TermsRepository {
	return &creditTermsRepository{client: client, log: log}
}

func (r *creditTermsRepository) Create(ctx context.Context, terms *domainCreditLine.SentCreditTerms) error {
	if err := r.client.Writer(ctx).Create(terms).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Terms were already sent for this application").
				WithReportableDetails(map[string]any{"application_id": terms.ApplicationID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return dbError(err, "Failed to create credit terms", map[string]any{"application_id": terms.ApplicationID})
	}
	return nil
}

func (r *creditTermsRepository) GetByApplicationID(ctx context.Context, applicationID string) (*domainCreditLine.SentCreditTerms, error) {
	var terms domainCreditLine.SentCreditTerms
	if err := scoped(ctx, r.client.Reader(ctx)).Where("application_id = ?", applicationID).First(&terms).Error; err != nil {
		return nil, notFoundOr(err, "credit terms for application", applicationID)
	}
	return &terms, nil
}
