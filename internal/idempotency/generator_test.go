package idempotency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey_Deterministic(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeCardCharge, map[string]interface{}{"customer_id": "c1", "amount": "10.00"})
	b := g.GenerateKey(ScopeCardCharge, map[string]interface{}{"amount": "10.00", "customer_id": "c1"})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "card_charge_"))

	c := g.GenerateKey(ScopeCardCharge, map[string]interface{}{"customer_id": "c1", "amount": "10.01"})
	assert.NotEqual(t, a, c)

	d := g.GenerateKey(ScopeCardRefund, map[string]interface{}{"customer_id": "c1", "amount": "10.00"})
	assert.NotEqual(t, a, d)
}

func TestGenerateKey_EmptyParams(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeCardRefund, nil)
	b := g.GenerateKey(ScopeCardRefund, map[string]interface{}{})
	assert.Equal(t, a, b)
	assert.Len(t, a, len("card_refund_")+32)
}
