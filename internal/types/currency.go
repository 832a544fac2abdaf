package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the settlement currency of the storefront.
const DefaultCurrency = "usd"

var currencyPrecision = map[string]int32{
	"usd": 2,
	"eur": 2,
	"gbp": 2,
	"cad": 2,
	"inr": 2,
	"jpy": 0,
	"krw": 0,
}

// GetCurrencyPrecision returns the number of minor-unit digits for currency.
func GetCurrencyPrecision(currency string) int32 {
	if p, ok := currencyPrecision[strings.ToLower(currency)]; ok {
		return p
	}
	return 2
}

// RoundToCurrencyPrecision rounds half away from zero to the currency's precision.
func RoundToCurrencyPrecision(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(GetCurrencyPrecision(currency))
}

// ToMinorUnits converts an amount to the smallest currency unit (cents).
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(GetCurrencyPrecision(currency)).Round(0).IntPart()
}

// FromMinorUnits converts an amount in the smallest currency unit back to a decimal.
func FromMinorUnits(amount int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(amount).Shift(-GetCurrencyPrecision(currency))
}
