package types

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// LockScope represents the scope of a database advisory lock
type LockScope string

const (
	LockScopeCreditApplication  LockScope = "credit_application"
	LockScopeAccountTransaction LockScope = "account_transaction"
	LockScopeInvoice            LockScope = "invoice"
	LockScopeCreditMemo         LockScope = "credit_memo"
	LockScopeOrder              LockScope = "order"
	LockScopePenaltyRun         LockScope = "penalty_run"
)

// DefaultLockTimeout is used when a LockRequest does not carry a timeout.
const DefaultLockTimeout = 30 * time.Second

// LockRequest describes an advisory lock acquisition.
// A nil Timeout waits up to DefaultLockTimeout, zero or negative fails fast.
type LockRequest struct {
	Key     string
	Timeout *time.Duration
}

func (r LockRequest) GetTimeout() time.Duration {
	if r.Timeout == nil {
		return DefaultLockTimeout
	}
	return *r.Timeout
}

// NewLockRequest builds a LockRequest for scope with the default timeout.
func NewLockRequest(ctx context.Context, scope LockScope, params map[string]interface{}) LockRequest {
	return LockRequest{Key: GenerateLockKey(ctx, scope, params)}
}

// GenerateLockKey generates a lock key from a scope and parameters.
// tenant_id from ctx is part of the key; params win on collision.
// Postgres hashes the returned string with hashtext.
func GenerateLockKey(ctx context.Context, scope LockScope, params map[string]interface{}) string {
	mergedParams := make(map[string]interface{})

	if tenantID := GetTenantID(ctx); tenantID != "" {
		mergedParams["tenant_id"] = tenantID
	}
	for k, v := range params {
		mergedParams[k] = v
	}

	keys := make([]string, 0, len(mergedParams))
	for k := range mergedParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, mergedParams[k]))
	}

	return b.String()
}

// TableName represents a database table name
type TableName string

const (
	TableNameCustomers              TableName = "customers"
	TableNameCreditApplications     TableName = "credit_applications"
	TableNameCreditLines            TableName = "credit_lines"
	TableNameSentCreditTerms        TableName = "sent_credit_terms"
	TableNameOrders                 TableName = "orders"
	TableNameDiscountCommits        TableName = "discount_commits"
	TableNameOffers                 TableName = "offers"
	TableNameRewardLedger           TableName = "reward_ledger"
	TableNameRewardRedemptions      TableName = "reward_redemptions"
	TableNameInvoices               TableName = "invoices"
	TableNameInvoiceSequences       TableName = "invoice_sequences"
	TableNameCreditMemos            TableName = "credit_memos"
	TableNameCreditMemoApplications TableName = "credit_memo_applications"
	TableNamePaymentAdjustments     TableName = "payment_adjustments"
	TableNameAccountTransactions    TableName = "account_transactions"
	TableNameActivityLogs           TableName = "activity_logs"
)
