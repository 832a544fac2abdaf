package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/accounttransaction"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type AccountTransactionService = interfaces.AccountTransactionService

type accountTransactionService struct {
	ServiceParams
}

func NewAccountTransactionService(params ServiceParams) AccountTransactionService {
	return &accountTransactionService{
		ServiceParams: params,
	}
}

// AppendTransaction adds a row to the customer's running receivable. The
// latest balance is read under a per-customer advisory lock so concurrent
// appends serialize instead of forking the balance.
func (s *accountTransactionService) AppendTransaction(ctx context.Context, req dto.AccountTransactionRequest) (*accounttransaction.AccountTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount := types.RoundToCurrencyPrecision(req.Amount, types.DefaultCurrency)

	var txn *accounttransaction.AccountTransaction
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		lockReq := types.NewLockRequest(txCtx, types.LockScopeAccountTransaction, map[string]interface{}{
			"customer_id": req.CustomerID,
		})
		if err := s.DB.LockKey(txCtx, lockReq); err != nil {
			return err
		}

		previous := decimal.Zero
		var seq int64
		latest, err := s.AccountTransactionRepo.GetLatest(txCtx, req.CustomerID)
		switch {
		case err == nil:
			previous = latest.RunningBalance
			seq = latest.Seq
		case !ierr.IsNotFound(err):
			return err
		}

		txn = &accounttransaction.AccountTransaction{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNT_TRANSACTION),
			CustomerID:      req.CustomerID,
			Seq:             seq + 1,
			TransactionType: req.Type,
			Amount:          amount,
			RunningBalance:  accounttransaction.NextBalance(previous, req.Type, amount),
			ReferenceType:   req.ReferenceType,
			ReferenceID:     req.ReferenceID,
			Description:     req.Description,
			BaseModel:       types.GetDefaultBaseModel(txCtx),
		}
		return s.AccountTransactionRepo.Create(txCtx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Debugw("appended account transaction",
		"customer_id", txn.CustomerID,
		"seq", txn.Seq,
		"type", txn.TransactionType,
		"amount", txn.Amount,
		"running_balance", txn.RunningBalance,
	)
	return txn, nil
}

func (s *accountTransactionService) ListTransactions(ctx context.Context, customerID string, filter *types.QueryFilter) (*dto.ListAccountTransactionsResponse, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.AccountTransactionRepo.ListByCustomerID(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}

	balance, err := s.GetBalance(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &dto.ListAccountTransactionsResponse{
		Items:   items,
		Balance: balance,
	}, nil
}

// GetBalance is the running balance of the newest row, zero for a new customer
func (s *accountTransactionService) GetBalance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	latest, err := s.AccountTransactionRepo.GetLatest(ctx, customerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return latest.RunningBalance, nil
}
