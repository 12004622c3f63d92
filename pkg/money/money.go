// Package money wraps exact fixed-point decimal arithmetic for every
// monetary quantity in the kernel. Binary floats are forbidden: the
// zero-sum and allocation-floor invariants (spec §4.3, §9) must hold
// exactly, not within an epsilon.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative-by-convention exact decimal quantity.
// Negative amounts are legal for Adjustment.ChangeAmount (a decrease)
// but never for allocated/spent balances.
type Amount = decimal.Decimal

// Zero is the additive identity.
var Zero = decimal.Zero

// NewFromInt builds an Amount from an integer count of minor units
// (e.g. cents), matching the scale used across the seed scenarios in
// spec.md §8.
func NewFromInt(minorUnits int64) Amount {
	return decimal.New(minorUnits, 0)
}

// FromFloat converts a float64 threshold (e.g. a policy ceiling
// expressed as a fraction) into the exact decimal domain so it can be
// compared against a computed ratio.
func FromFloat(f float64) Amount {
	return decimal.NewFromFloat(f)
}

// Parse parses a decimal string into an Amount.
func Parse(s string) (Amount, error) {
	a, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: parsing amount %q: %w", s, err)
	}
	return a, nil
}

// IsNegative reports whether a is strictly less than zero.
func IsNegative(a Amount) bool {
	return a.Sign() < 0
}

// SumZero reports whether the given changes sum to exactly zero,
// which is the zero-sum balance invariant for a batch of budget
// allocation adjustments (spec §4.3).
func SumZero(changes []Amount) bool {
	total := Zero
	for _, c := range changes {
		total = total.Add(c)
	}
	return total.Equal(Zero)
}

// StepRatio returns |delta| / base as a decimal ratio. The caller must
// ensure base is non-zero; flex-step validation treats a zero-base
// item specially rather than dividing by it (spec §4.3).
func StepRatio(delta, base Amount) decimal.Decimal {
	return delta.Abs().Div(base)
}
