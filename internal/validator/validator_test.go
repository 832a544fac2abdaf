package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	ierr "github.com/pharmalink/ledger/internal/errors"
)

type sampleRequest struct {
	CustomerID string          `validate:"required"`
	Amount     decimal.Decimal `validate:"decimal_gt0"`
	Fee        decimal.Decimal `validate:"decimal_gte0"`
}

func TestValidateRequest(t *testing.T) {
	ok := sampleRequest{CustomerID: "cust_1", Amount: decimal.NewFromInt(5)}
	assert.NoError(t, ValidateRequest(ok))

	missing := sampleRequest{Amount: decimal.NewFromInt(5)}
	err := ValidateRequest(missing)
	assert.True(t, ierr.IsValidation(err))

	zero := sampleRequest{CustomerID: "cust_1"}
	assert.True(t, ierr.IsValidation(ValidateRequest(zero)))

	negativeFee := sampleRequest{CustomerID: "cust_1", Amount: decimal.NewFromInt(1), Fee: decimal.NewFromInt(-1)}
	assert.True(t, ierr.IsValidation(ValidateRequest(negativeFee)))
}
