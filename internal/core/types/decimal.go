// Package types provides the money and calendar date types used by balances
// and reports.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MoneyScale is the number of decimal places stored for monetary columns.
const MoneyScale = 2

// NewMoney creates a Money value from a float decoded from JSON.
// The value is rounded to MoneyScale.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f).Round(MoneyScale)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Sum adds up values.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percentage returns part / whole * 100 rounded to MoneyScale, or zero when
// whole is zero.
func Percentage(part, whole Money) Money {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(MoneyScale)
}

// Average returns total / count rounded to MoneyScale, or zero for count 0.
func Average(total Money, count int) Money {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(MoneyScale)
}
