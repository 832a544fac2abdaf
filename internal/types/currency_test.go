package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundToCurrencyPrecision(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		expected string
	}{
		{name: "usd_half_up", amount: "10.275", currency: "usd", expected: "10.28"},
		{name: "usd_uppercase", amount: "0.005", currency: "USD", expected: "0.01"},
		{name: "jpy_no_decimals", amount: "1000.5", currency: "jpy", expected: "1001"},
		{name: "unknown_defaults_to_two", amount: "3.14159", currency: "xyz", expected: "3.14"},
		{name: "negative_away_from_zero", amount: "-2.345", currency: "usd", expected: "-2.35"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundToCurrencyPrecision(decimal.RequireFromString(tt.amount), tt.currency)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(12345), ToMinorUnits(decimal.RequireFromString("123.45"), "usd"))
	assert.Equal(t, int64(1001), ToMinorUnits(decimal.RequireFromString("1000.5"), "jpy"))
	assert.True(t, decimal.RequireFromString("123.45").Equal(FromMinorUnits(12345, "usd")))
}
