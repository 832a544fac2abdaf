package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Scope namespaces idempotency keys per operation
type Scope string

const (
	ScopeCardCharge Scope = "card_charge"
	ScopeCardRefund Scope = "card_refund"
)

// Generator builds deterministic keys from a scope and parameters
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey returns "<scope>_<sha256 prefix>" over the sorted params
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	keys := lo.Keys(params)
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s_%s", scope, hex.EncodeToString(sum[:])[:32])
}
