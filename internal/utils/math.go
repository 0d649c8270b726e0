/*
This file contains checked arithmetic helpers for the ledger counters.
All pooled-balance and profit mutations go through these so that an
overflowing operation fails instead of wrapping silently.
*/

package utils

import (
	"errors"
	"math"

	sdkmath "cosmossdk.io/math"
)

// ErrOverflow is returned when a checked operation leaves the target range.
var ErrOverflow = errors.New("arithmetic overflow")

var (
	maxInt64 = sdkmath.NewInt(math.MaxInt64)
	minInt64 = sdkmath.NewInt(math.MinInt64)
)

// AddUint64 returns a+b, or ErrOverflow if the sum exceeds the uint64 range.
func AddUint64(a, b uint64) (uint64, error) {
	sum := sdkmath.NewIntFromUint64(a).Add(sdkmath.NewIntFromUint64(b))
	if !sum.IsUint64() {
		return 0, ErrOverflow
	}
	return sum.Uint64(), nil
}

// SubUint64 returns a-b, or ErrOverflow if b exceeds a. Callers check the
// domain precondition (insufficient funds) before reaching this.
func SubUint64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// MulUint64 returns a*b, or ErrOverflow if the product exceeds the uint64 range.
func MulUint64(a, b uint64) (uint64, error) {
	product := sdkmath.NewIntFromUint64(a).Mul(sdkmath.NewIntFromUint64(b))
	if !product.IsUint64() {
		return 0, ErrOverflow
	}
	return product.Uint64(), nil
}

// AddInt64 returns a+b, or ErrOverflow if the sum leaves the int64 range.
// Used for the signed profit accumulator.
func AddInt64(a, b int64) (int64, error) {
	sum := sdkmath.NewInt(a).Add(sdkmath.NewInt(b))
	if sum.GT(maxInt64) || sum.LT(minInt64) {
		return 0, ErrOverflow
	}
	return sum.Int64(), nil
}

// MulThenUint64 returns a*b*c, or ErrOverflow if the product exceeds the
// uint64 range. Used for the reward accrual product (multiplier * rate *
// duration), which can overflow in two steps even when each pair fits.
func MulThenUint64(a, b, c uint64) (uint64, error) {
	product := sdkmath.NewIntFromUint64(a).
		Mul(sdkmath.NewIntFromUint64(b)).
		Mul(sdkmath.NewIntFromUint64(c))
	if !product.IsUint64() {
		return 0, ErrOverflow
	}
	return product.Uint64(), nil
}
