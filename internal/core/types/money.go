// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors. Unit costs in the
// stock ledger are stored with the same precision so that weighted-average
// recomputes stay order-independent.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// NewMoneyFromInt creates a Money value from an integer amount of major units.
func NewMoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
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

// MaxMoney returns the larger of two Money values.
func MaxMoney(a, b Money) Money {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}
