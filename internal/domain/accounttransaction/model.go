package accounttransaction

import (
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/types"
)

// AccountTransaction is an append-only row of the customer's running receivable.
// Debits increase what the customer owes, credits decrease it.
type AccountTransaction struct {
	ID              string                       `json:"id" gorm:"column:id;primaryKey"`
	CustomerID      string                       `json:"customer_id" gorm:"column:customer_id;index:idx_account_txn_customer_seq;not null"`
	Seq             int64                        `json:"seq" gorm:"column:seq;index:idx_account_txn_customer_seq;not null"`
	TransactionType types.AccountTransactionType `json:"transaction_type" gorm:"column:transaction_type;not null"`
	Amount          decimal.Decimal              `json:"amount" gorm:"column:amount;type:numeric(20,2);not null"`
	RunningBalance  decimal.Decimal              `json:"running_balance" gorm:"column:running_balance;type:numeric(20,2);not null"`
	ReferenceType   types.AccountReferenceType   `json:"reference_type" gorm:"column:reference_type"`
	ReferenceID     string                       `json:"reference_id" gorm:"column:reference_id"`
	Description     string                       `json:"description" gorm:"column:description"`
	types.BaseModel
}

func (AccountTransaction) TableName() string { return string(types.TableNameAccountTransactions) }

// NextBalance applies a movement to the previous running balance
func NextBalance(previous decimal.Decimal, txnType types.AccountTransactionType, amount decimal.Decimal) decimal.Decimal {
	if txnType == types.AccountTransactionTypeDebit {
		return previous.Add(amount)
	}
	return previous.Sub(amount)
}
