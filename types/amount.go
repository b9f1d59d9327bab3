package types

import (
	"fmt"
	"math"
)

// Amount is a token quantity. All balances, supplies, and caps in Tenure
// are unsigned integer amounts — no fractional units, no floating point.
type Amount uint64

// MaxAmount is the largest representable token quantity.
const MaxAmount = Amount(math.MaxUint64)

// AddChecked returns a + b and reports whether the addition stayed within
// range. Supply and cap arithmetic must use this instead of raw +.
func (a Amount) AddChecked(b Amount) (Amount, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// SubChecked returns a - b and reports whether a was large enough.
func (a Amount) SubChecked(b Amount) (Amount, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// MulChecked returns a * b and reports whether the product stayed within
// range. Royalty arithmetic uses this for price × fee-basis products.
func (a Amount) MulChecked(b Amount) (Amount, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// Min returns the smaller of two amounts.
func (a Amount) Min(b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two amounts.
func (a Amount) Max(b Amount) Amount {
	if a > b {
		return a
	}
	return b
}

// String returns the decimal representation.
func (a Amount) String() string {
	return fmt.Sprintf("%d", uint64(a))
}

// SumChecked calculates the sum of multiple amounts and reports whether
// the total stayed within range. Batch mint validation uses this to total
// requested quantities before touching any balance.
func SumChecked(values ...Amount) (Amount, bool) {
	var total Amount
	for _, v := range values {
		next, ok := total.AddChecked(v)
		if !ok {
			return 0, false
		}
		total = next
	}
	return total, true
}
