package types

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLockKey(t *testing.T) {
	ctx := SetTenantID(context.Background(), "tenant_1")

	key := GenerateLockKey(ctx, LockScopeAccountTransaction, map[string]interface{}{
		"customer_id": "cust_1",
	})
	assert.Equal(t, "account_transaction:customer_id=cust_1:tenant_id=tenant_1", key)

	// params override context values
	key = GenerateLockKey(ctx, LockScopeCreditApplication, map[string]interface{}{
		"tenant_id": "other",
		"app_id":    "capp_1",
	})
	assert.Equal(t, "credit_application:app_id=capp_1:tenant_id=other", key)
}

func TestLockRequestTimeout(t *testing.T) {
	assert.Equal(t, DefaultLockTimeout, LockRequest{Key: "k"}.GetTimeout())

	zero := time.Duration(0)
	assert.Equal(t, time.Duration(0), LockRequest{Key: "k", Timeout: &zero}.GetTimeout())
}

func TestNetTermsValidate(t *testing.T) {
	assert.NoError(t, NetTerms30.Validate())
	assert.NoError(t, NetTerms45.Validate())
	assert.NoError(t, NetTerms60.Validate())
	assert.Error(t, NetTerms(15).Validate())
}

func TestCreditApplicationStatus(t *testing.T) {
	assert.True(t, CreditApplicationStatusApproved.IsTerminal())
	assert.True(t, CreditApplicationStatusRejected.IsTerminal())
	assert.True(t, CreditApplicationStatusExpired.IsTerminal())
	assert.False(t, CreditApplicationStatusPending.IsTerminal())
	assert.True(t, CreditApplicationStatusUnderReview.IsOpen())
}
