// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Quantity represents a stock quantity with full precision.
// Uses decimal.Decimal to avoid floating-point errors; the owning
// commodity defines how many fractional digits are meaningful
// (oil keeps two, tires keep none).
type Quantity = decimal.Decimal

// NewQuantityFromString creates a Quantity from a string.
// This is the preferred method for exact values.
func NewQuantityFromString(s string) (Quantity, error) {
	return decimal.NewFromString(s)
}

// NewQuantityFromInt creates a Quantity from a whole number of units.
func NewQuantityFromInt(n int64) Quantity {
	return decimal.NewFromInt(n)
}

// MustQuantity creates a Quantity from a string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Quantity value.
func Zero() Quantity {
	return decimal.Zero
}

// Km is an odometer value in whole kilometers.
// Storage: int64, which comfortably covers any vehicle lifetime.
type Km int64

func (k Km) Int64() int64      { return int64(k) }
func (k Km) IsZero() bool      { return k == 0 }
func (k Km) IsNegative() bool  { return k < 0 }
func (k Km) Sub(other Km) Km   { return k - other }
func (k Km) Add(other Km) Km   { return k + other }
func (k Km) Less(other Km) bool { return k < other }
