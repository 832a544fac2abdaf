package sqlstore

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domainMemo "github.com/pharmalink/ledger/internal/domain/creditmemo"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

type creditMemoRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewCreditMemoRepository(client *postgres.Client, log *logger.Logger) domainMemo.Repository {
	return &creditMemoRepository{client: client, log: log}
}

func (r *creditMemoRepository) Create(ctx context.Context, m *domainMemo.CreditMemo) error {
	if err := r.client.Writer(ctx).Create(m).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Credit memo number already in use").
				WithReportableDetails(map[string]any{"memo_number": m.MemoNumber}).
				Mark(ierr.ErrAlreadyExists)
		}
		return dbError(err, "Failed to create credit memo", map[string]any{"customer_id": m.CustomerID})
	}
	return nil
}

func (r *creditMemoRepository) Get(ctx context.Context, id string) (*domainMemo.CreditMemo, error) {
	var m domainMemo.CreditMemo
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFoundOr(err, "credit memo", id)
	}
	return &m, nil
}

func (r *creditMemoRepository) ListByCustomerID(ctx context.Context, customerID string) ([]*domainMemo.CreditMemo, error) {
	var memos []*domainMemo.CreditMemo
	if err := scoped(ctx, r.client.Reader(ctx)).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&memos).Error; err != nil {
		return nil, dbError(err, "Failed to list credit memos", map[string]any{"customer_id": customerID})
	}
	return memos, nil
}

func (r *creditMemoRepository) Apply(ctx context.Context, id string, amount decimal.Decimal) (*domainMemo.CreditMemo, error) {
	span := StartRepositorySpan(ctx, "credit_memo", "apply", map[string]interface{}{
		"memo_id": id,
		"amount":  amount.String(),
	})
	defer FinishSpan(span)

	// SET expressions read the pre-update balance
	updates := updateAudit(ctx)
	updates["balance"] = gorm.Expr("balance - ?", amount)
	updates["applied_amount"] = gorm.Expr("applied_amount + ?", amount)
	updates["memo_status"] = gorm.Expr(
		"CASE WHEN balance - ? <= 0 THEN ? ELSE ? END",
		amount, types.CreditMemoStatusFullyApplied, types.CreditMemoStatusPartiallyApplied,
	)

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainMemo.CreditMemo{})).
		Where("id = ?", id).
		Where("balance >= ?", amount).
		Updates(updates)
	if res.Error != nil {
		SetSpanError(span, res.Error)
		return nil, dbError(res.Error, "Failed to apply credit memo", map[string]any{"memo_id": id})
	}

	memo, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, ierr.NewError("credit memo balance too low").
			WithHintf("Credit memo balance %s does not cover %s", memo.Balance.StringFixed(2), amount.StringFixed(2)).
			WithReportableDetails(map[string]any{
				"memo_id": id,
				"balance": memo.Balance,
				"amount":  amount,
			}).
			Mark(ierr.ErrInsufficientBalance)
	}

	SetSpanSuccess(span)
	return memo, nil
}

func (r *creditMemoRepository) CreateApplication(ctx context.Context, app *domainMemo.Application) error {
	if err := r.client.Writer(ctx).Create(app).Error; err != nil {
		return dbError(err, "Failed to record credit memo application", map[string]any{"memo_id": app.MemoID})
	}
	return nil
}

func (r *creditMemoRepository) ListApplications(ctx context.Context, memoID string) ([]*domainMemo.Application, error) {
	var apps []*domainMemo.Application
	if err := scoped(ctx, r.client.Reader(ctx)).
		Where("memo_id = ?", memoID).
		Order("created_at ASC").
		Find(&apps).Error; err != nil {
		return nil, dbError(err, "Failed to list credit memo applications", map[string]any{"memo_id": memoID})
	}
	return apps, nil
}
