package amm

import "math/big"

const (
	// InitialRatio fixes the token1:token0 price of a pool's first deposit.
	InitialRatio = 2
	// FeeDenominator is the basis-point scale for fee arithmetic.
	FeeDenominator = 10000
	// MaxPoolFeeBps is the hard cap on a pool's fee rate (1%).
	MaxPoolFeeBps = 100
	// MaxDefaultFeeBps bounds the factory's default fee rate setting (100%).
	MaxDefaultFeeBps = 10000
)

// accPrecision scales the fee-per-share accumulators so per-share truncation
// stays below one token unit per claim.
var accPrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var feeDenom = big.NewInt(FeeDenominator)

// AmountOut prices a constant-product swap: the fee is carved off the input
// in basis points, then out = reserveOut * effIn / (reserveIn + effIn) with
// truncating division. Returns the net output and the fee amount (in input
// token units). Pure; both Swap and every preview path go through it.
func AmountOut(reserveIn, reserveOut, amountIn *big.Int, feeBps uint16) (out, fee *big.Int) {
	eff := new(big.Int).Mul(amountIn, big.NewInt(FeeDenominator-int64(feeBps)))
	eff.Quo(eff, feeDenom)

	fee = new(big.Int).Sub(amountIn, eff)

	den := new(big.Int).Add(reserveIn, eff)
	if den.Sign() == 0 {
		return new(big.Int), fee
	}
	out = new(big.Int).Mul(reserveOut, eff)
	out.Quo(out, den)
	return out, fee
}

// RequiredAmount1 is the token1 leg matching a token0 deposit: reserve ratio
// once the pool is seeded, InitialRatio times the deposit before.
func RequiredAmount1(reserve0, reserve1, totalSupply, amount0 *big.Int) *big.Int {
	if totalSupply.Sign() == 0 {
		return new(big.Int).Mul(amount0, big.NewInt(InitialRatio))
	}
	r := new(big.Int).Mul(amount0, reserve1)
	return r.Quo(r, reserve0)
}

// liquidityMinted is the LP amount for a token0 deposit. The first deposit
// mints amount0 outright; later deposits mint pro rata against reserve0.
func liquidityMinted(reserve0, totalSupply, amount0 *big.Int) *big.Int {
	if totalSupply.Sign() == 0 {
		return new(big.Int).Set(amount0)
	}
	lp := new(big.Int).Mul(amount0, totalSupply)
	return lp.Quo(lp, reserve0)
}

// withdrawAmounts is the proportional reserve share of an LP burn. Division
// truncates, so the dust stays with the pool.
func withdrawAmounts(reserve0, reserve1, totalSupply, lpAmount *big.Int) (amount0, amount1 *big.Int) {
	amount0 = new(big.Int).Mul(lpAmount, reserve0)
	amount0.Quo(amount0, totalSupply)
	amount1 = new(big.Int).Mul(lpAmount, reserve1)
	amount1.Quo(amount1, totalSupply)
	return amount0, amount1
}
