package sqlstore

import (
	"context"

	domainAccount "github.com/pharmalink/ledger/internal/domain/accounttransaction"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

type accountTransactionRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewAccountTransactionRepository(client *postgres.Client, log *logger.Logger) domainAccount.Repository {
	return &accountTransactionRepository{client: client, log: log}
}

func (r *accountTransactionRepository) Create(ctx context.Context, txn *domainAccount.AccountTransaction) error {
	if err := r.client.Writer(ctx).Create(txn).Error; err != nil {
		return dbError(err, "Failed to append account transaction", map[string]any{"customer_id": txn.CustomerID})
	}
	return nil
}

func (r *accountTransactionRepository) GetLatest(ctx context.Context, customerID string) (*domainAccount.AccountTransaction, error) {
	var txn domainAccount.AccountTransaction
	if err := scoped(ctx, r.client.Reader(ctx)).
		Where("customer_id = ?", customerID).
		Order("seq DESC").
		First(&txn).Error; err != nil {
		return nil, notFoundOr(err, "account transaction for customer", customerID)
	}
	return &txn, nil
}

func (r *accountTransactionRepository) ListByCustomerID(ctx context.Context, customerID string, filter *types.QueryFilter) ([]*domainAccount.AccountTransaction, error) {
	q := scoped(ctx, r.client.Reader(ctx)).Where("customer_id = ?", customerID)
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}
	q = q.Order("seq DESC")
	if !filter.IsUnlimited() {
		q = q.Limit(filter.GetLimit()).Offset(filter.GetOffset())
	}

	var txns []*domainAccount.AccountTransaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, dbError(err, "Failed to list account transactions", map[string]any{"customer_id": customerID})
	}
	return txns, nil
}
