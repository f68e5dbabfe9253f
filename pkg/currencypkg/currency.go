// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Constants for all supported currencies, in the lower-case form used by the
// payment processor.
const (
	USD = "usd"
	EUR = "eur"
	GBP = "gbp"
	CAD = "cad"
	AUD = "aud"
)

// SupportedCurrencies holds all the supported currencies.
//
// All of them have two decimal minor units.
var SupportedCurrencies = []string{
	USD,
	EUR,
	GBP,
	CAD,
	AUD,
}

const minorUnitExponent = -2

// Normalize returns the canonical form of a currency code.
func Normalize(currency string) string {
	return strings.ToLower(strings.TrimSpace(currency))
}

// IsSupportedCurrency returns true if the currency is supported.
func IsSupportedCurrency(currency string) bool {
	c := Normalize(currency)

	for _, s := range SupportedCurrencies {
		if s == c {
			return true
		}
	}

	return false
}

// MinorToMajor converts an amount of minor units (cents) to major units
// (dollars) without binary floating point.
func MinorToMajor(amount int64) decimal.Decimal {
	return decimal.New(amount, minorUnitExponent)
}

// MajorToMinor converts major units back to minor units, truncating anything
// below one minor unit.
func MajorToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(-minorUnitExponent).IntPart()
}

// ValidCurrency validates whether the currency is supported.
var ValidCurrency validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(string); ok {
		return IsSupportedCurrency(c)
	}

	return false
}

// EncodeAsNumbers makes every decimal marshal as a JSON number instead of a
// string. It flips a process-wide switch of the decimal package, so it is
// called once from main before any server starts.
func EncodeAsNumbers() {
	decimal.MarshalJSONWithoutQuotes = true
}
