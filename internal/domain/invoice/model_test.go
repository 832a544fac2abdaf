package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceBalances(t *testing.T) {
	d := decimal.NewFromInt
	tests := []struct {
		name          string
		paid          int64
		penalty       int64
		credited      int64
		wantBalance   int64
		wantPrincipal int64
	}{
		{"unpaid", 0, 0, 0, 100, 100},
		{"penalty is not principal", 0, 10, 0, 110, 100},
		{"refund credited", 0, 0, 40, 60, 60},
		{"paid into penalty", 105, 10, 0, 5, 0},
		{"over credited floors at zero", 80, 0, 40, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{
				TotalAmount:    d(100),
				AmountPaid:     d(tt.paid),
				PenaltyAmount:  d(tt.penalty),
				CreditedAmount: d(tt.credited),
			}
			inv.RecomputeBalance()
			assert.True(t, d(tt.wantBalance).Equal(inv.BalanceDue), "balance due = %s", inv.BalanceDue)
			assert.True(t, d(tt.wantPrincipal).Equal(inv.OutstandingPrincipal()), "principal = %s", inv.OutstandingPrincipal())
		})
	}
}
