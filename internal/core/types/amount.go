package types

import "math/big"

// Big-integer helpers used throughout the engine. All pool math runs on
// *big.Int so fee accumulators and multi-hop products cannot overflow.

// NewAmount returns a fresh *big.Int holding v.
func NewAmount(v int64) *big.Int {
	return big.NewInt(v)
}

// CloneAmount returns a copy of v, or a zero amount when v is nil.
func CloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// IsPositive reports whether v is non-nil and strictly greater than zero.
func IsPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}

// MulDiv computes a*b/c with truncating integer division. c must be non-zero.
func MulDiv(a, b, c *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, c)
}
