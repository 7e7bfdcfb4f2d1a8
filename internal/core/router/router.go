// Package router chains pool operations into user-facing trades: single and
// multi-hop swaps with minimum-output guards, best-route discovery, and the
// liquidity and fee entry points that wrap a pool behind slippage checks.
package router

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/kerlouan/goswapd/internal/core/ledger"
	"github.com/kerlouan/goswapd/internal/core/types"
	"github.com/kerlouan/goswapd/internal/events"
)

// pathCacheSize bounds the number of distinct (tokenIn, tokenOut, maxHops)
// queries whose candidate paths stay cached per registry version.
const pathCacheSize = 512

// TokenPair names a pool by its two tokens, in either order.
type TokenPair struct {
	TokenA types.Address
	TokenB types.Address
}

// ClaimedFees reports the outcome of one pool in a batch fee claim.
type ClaimedFees struct {
	Token0 types.Address
	Token1 types.Address
	Fee0   *big.Int
	Fee1   *big.Int
}

// PathQuote is the simulated outcome of a multi-hop trade. HopAmounts and
// HopFees carry one entry per hop, in path order; fees are denominated in
// each hop's input token, and TotalFee is their plain sum across hops.
type PathQuote struct {
	AmountOut  *big.Int
	TotalFee   *big.Int
	HopAmounts []*big.Int
	HopFees    []*big.Int
}

// Router executes trades against the pools of a single factory. It holds no
// balances of its own: a multi-hop trade debits the trader once at the path
// entry, moves value between pools at the reserve level, and credits the
// trader once at the exit. The router's address must be authorized with the
// factory before reserve-level execution works.
type Router struct {
	addr    types.Address
	factory *amm.Factory
	tokens  ledger.TokenLedger
	bus     *events.Bus
	paths   *lru.Cache[pathKey, [][]types.Address]
}

// New builds a router operating as addr against factory's pools.
func New(addr types.Address, factory *amm.Factory, tokens ledger.TokenLedger, bus *events.Bus) (*Router, error) {
	if addr.IsZero() {
		return nil, amm.ErrZeroAddress
	}
	cache, err := lru.New[pathKey, [][]types.Address](pathCacheSize)
	if err != nil {
		return nil, err
	}
	return &Router{
		addr:    addr,
		factory: factory,
		tokens:  tokens,
		bus:     bus,
		paths:   cache,
	}, nil
}

// Address is the identity the router presents to pools.
func (r *Router) Address() types.Address { return r.addr }

// Swap trades amountIn of tokenIn for tokenOut through the direct pool. The
// quote is checked against minAmountOut before anything executes; a nil
// minimum disables the guard.
func (r *Router) Swap(trader types.Address, tokenIn types.Address, amountIn *big.Int, tokenOut types.Address, minAmountOut *big.Int) (*big.Int, error) {
	pool := r.factory.FindPool(tokenIn, tokenOut)
	if pool == nil {
		return nil, amm.ErrPoolNotFound
	}
	out, _, err := pool.GetAmountOut(tokenIn, amountIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if !meetsMinimum(out, minAmountOut) {
		return nil, ErrInsufficientOutput
	}
	return pool.Swap(trader, tokenIn, amountIn, tokenOut)
}

// PreviewSwapMultiHop simulates a trade along an explicit token path without
// touching state.
func (r *Router) PreviewSwapMultiHop(path []types.Address, amountIn *big.Int) (*PathQuote, error) {
	pools, err := r.resolvePath(path)
	if err != nil {
		return nil, err
	}
	return quotePath(pools, path, amountIn)
}

// SwapMultiHop trades along an explicit token path. The whole path is quoted
// and checked against minAmountOut first, so a failing guard leaves every
// pool untouched. Execution debits the trader once, applies each hop at the
// reserve level, and credits the final output once.
func (r *Router) SwapMultiHop(trader types.Address, path []types.Address, amountIn, minAmountOut *big.Int) (*big.Int, error) {
	pools, err := r.resolvePath(path)
	if err != nil {
		return nil, err
	}
	quote, err := quotePath(pools, path, amountIn)
	if err != nil {
		return nil, err
	}
	if !meetsMinimum(quote.AmountOut, minAmountOut) {
		return nil, ErrInsufficientOutput
	}
	if err := r.executePath(trader, pools, path, amountIn, quote); err != nil {
		return nil, err
	}
	return quote.AmountOut, nil
}

// SwapWithBestRoute finds the path with the highest output among all simple
// paths of at most maxHops hops and executes it. Ties go to the shorter
// path. The winning route is announced on the routes stream before the trade
// runs.
func (r *Router) SwapWithBestRoute(trader types.Address, tokenIn types.Address, amountIn *big.Int, tokenOut types.Address, minAmountOut *big.Int, maxHops int) ([]types.Address, *big.Int, error) {
	path, pools, quote, err := r.bestRoute(tokenIn, amountIn, tokenOut, maxHops)
	if err != nil {
		return nil, nil, err
	}
	if !meetsMinimum(quote.AmountOut, minAmountOut) {
		return nil, nil, ErrInsufficientOutput
	}

	r.bus.Emit(events.BestRouteFound{
		Path:        append([]types.Address(nil), path...),
		AmountIn:    types.CloneAmount(amountIn),
		ExpectedOut: types.CloneAmount(quote.AmountOut),
	})

	if err := r.executePath(trader, pools, path, amountIn, quote); err != nil {
		return nil, nil, err
	}
	return path, quote.AmountOut, nil
}

// BestRouteQuote returns the winning path and its simulated outcome without
// executing anything.
func (r *Router) BestRouteQuote(tokenIn types.Address, amountIn *big.Int, tokenOut types.Address, maxHops int) ([]types.Address, *PathQuote, error) {
	path, _, quote, err := r.bestRoute(tokenIn, amountIn, tokenOut, maxHops)
	if err != nil {
		return nil, nil, err
	}
	return path, quote, nil
}

func (r *Router) bestRoute(tokenIn types.Address, amountIn *big.Int, tokenOut types.Address, maxHops int) ([]types.Address, []*amm.Pool, *PathQuote, error) {
	if !types.IsPositive(amountIn) {
		return nil, nil, nil, amm.ErrInsufficientInput
	}
	candidates, err := r.candidatePaths(tokenIn, tokenOut, maxHops)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		bestPath  []types.Address
		bestPools []*amm.Pool
		bestQuote *PathQuote
	)
	for _, path := range candidates {
		pools, err := r.resolvePath(path)
		if err != nil {
			continue
		}
		quote, err := quotePath(pools, path, amountIn)
		if err != nil {
			continue
		}
		if bestQuote == nil ||
			quote.AmountOut.Cmp(bestQuote.AmountOut) > 0 ||
			(quote.AmountOut.Cmp(bestQuote.AmountOut) == 0 && len(path) < len(bestPath)) {
			bestPath, bestPools, bestQuote = path, pools, quote
		}
	}
	if bestQuote == nil {
		return nil, nil, nil, ErrNoRoute
	}
	return bestPath, bestPools, bestQuote, nil
}

// executePath applies an already-quoted trade. Reserve mutations are exactly
// the quoted amounts, so the ledger credit at the exit is the only step that
// can fail; on that failure every hop is rewound and the entry debit is
// refunded before returning.
func (r *Router) executePath(trader types.Address, pools []*amm.Pool, path []types.Address, amountIn *big.Int, quote *PathQuote) error {
	if !r.factory.IsAuthorizedRouter(r.addr) {
		return amm.ErrNotAuthorizedRouter
	}
	if err := r.tokens.TransferIn(trader, path[0], amountIn); err != nil {
		return err
	}

	hopIn := amountIn
	for i, pool := range pools {
		out, _, err := pool.ExecuteSwap(r.addr, trader, path[i], hopIn, path[i+1])
		if err != nil {
			r.rewindHops(pools, path, amountIn, quote, i)
			_ = r.tokens.TransferOut(trader, path[0], amountIn)
			return err
		}
		hopIn = out
	}

	if err := r.tokens.TransferOut(trader, path[len(path)-1], hopIn); err != nil {
		r.rewindHops(pools, path, amountIn, quote, len(pools))
		_ = r.tokens.TransferOut(trader, path[0], amountIn)
		return err
	}

	hopIn = amountIn
	for i, pool := range pools {
		pool.EmitSwapped(trader, path[i], hopIn, path[i+1], quote.HopAmounts[i], quote.HopFees[i])
		hopIn = quote.HopAmounts[i]
	}
	return nil
}

// rewindHops undoes hops [0, n) in reverse order using the quoted amounts.
func (r *Router) rewindHops(pools []*amm.Pool, path []types.Address, amountIn *big.Int, quote *PathQuote, n int) {
	for i := n - 1; i >= 0; i-- {
		hopIn := amountIn
		if i > 0 {
			hopIn = quote.HopAmounts[i-1]
		}
		_ = pools[i].RewindSwap(r.addr, path[i], hopIn, quote.HopAmounts[i], quote.HopFees[i])
	}
}

// AddLiquidityFromToken0 deposits into a pool sizing the position by the
// canonical token0 leg. The minted LP amount is checked against minLP before
// the deposit runs.
func (r *Router) AddLiquidityFromToken0(provider types.Address, tokenA, tokenB types.Address, amount0, minLP *big.Int) (lpMinted *big.Int, err error) {
	pool, err := r.factory.GetPool(tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	_, minted, err := pool.PreviewAddLiquidity(amount0)
	if err != nil {
		return nil, err
	}
	if !meetsMinimum(minted, minLP) {
		return nil, ErrInsufficientLPAmount
	}
	_, lpMinted, err = pool.AddLiquidity(provider, amount0)
	return lpMinted, err
}

// AddLiquidityFromToken1 deposits into a pool sizing the position by the
// canonical token1 leg. The token0 leg is derived from the reserve ratio, or
// amount1 divided by the initial ratio on an empty pool. Truncation can leave
// a token1 remainder with the provider.
func (r *Router) AddLiquidityFromToken1(provider types.Address, tokenA, tokenB types.Address, amount1, minLP *big.Int) (lpMinted *big.Int, err error) {
	pool, err := r.factory.GetPool(tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	if !types.IsPositive(amount1) {
		return nil, amm.ErrInsufficientInput
	}

	reserve0, reserve1 := pool.Reserves()
	var deposit0 *big.Int
	if pool.TotalLPSupply().Sign() == 0 {
		deposit0 = new(big.Int).Quo(amount1, big.NewInt(amm.InitialRatio))
	} else {
		deposit0 = types.MulDiv(amount1, reserve0, reserve1)
	}
	if deposit0.Sign() <= 0 {
		return nil, ErrInsufficientAAmount
	}

	_, minted, err := pool.PreviewAddLiquidity(deposit0)
	if err != nil {
		return nil, err
	}
	if !meetsMinimum(minted, minLP) {
		return nil, ErrInsufficientLPAmount
	}
	_, lpMinted, err = pool.AddLiquidity(provider, deposit0)
	return lpMinted, err
}

// WithdrawLiquidity burns lpAmount of the provider's position with minimum
// guards on both withdrawn legs. min0 and min1 are denominated in the pool's
// canonical token0 and token1.
func (r *Router) WithdrawLiquidity(provider types.Address, tokenA, tokenB types.Address, lpAmount, min0, min1 *big.Int) (amount0, amount1 *big.Int, err error) {
	pool, err := r.factory.GetPool(tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	if !types.IsPositive(lpAmount) {
		return nil, nil, ErrInsufficientLPAmount
	}
	if pool.LPBalance(provider).Cmp(lpAmount) < 0 {
		return nil, nil, ErrInsufficientLPAmount
	}

	out0, out1, err := pool.PreviewWithdraw(lpAmount)
	if err != nil {
		return nil, nil, err
	}
	if !meetsMinimum(out0, min0) {
		return nil, nil, ErrInsufficientAAmount
	}
	if !meetsMinimum(out1, min1) {
		return nil, nil, ErrInsufficientBAmount
	}

	return pool.WithdrawLiquidity(provider, lpAmount)
}

// ClaimFeesFromPools collects the holder's accrued fees across several pools
// in one call. Every pair is validated and resolved before any claim runs;
// pools where the holder has nothing pending are skipped without error.
func (r *Router) ClaimFeesFromPools(holder types.Address, pairs []TokenPair) ([]ClaimedFees, error) {
	if len(pairs) == 0 {
		return nil, ErrNoPoolsSpecified
	}
	pools := make([]*amm.Pool, 0, len(pairs))
	for _, pair := range pairs {
		if pair.TokenA == pair.TokenB || pair.TokenA.IsZero() || pair.TokenB.IsZero() {
			return nil, ErrInvalidTokenPair
		}
		pool, err := r.factory.GetPool(pair.TokenA, pair.TokenB)
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}

	claims := make([]ClaimedFees, 0, len(pools))
	for _, pool := range pools {
		pend0, pend1 := pool.PendingFees(holder)
		if pend0.Sign() == 0 && pend1.Sign() == 0 {
			continue
		}
		fee0, fee1, err := pool.ClaimFees(holder)
		if err != nil {
			return claims, err
		}
		claims = append(claims, ClaimedFees{
			Token0: pool.Token0(),
			Token1: pool.Token1(),
			Fee0:   fee0,
			Fee1:   fee1,
		})
	}
	return claims, nil
}

// resolvePath validates a token path and looks up the pool backing each hop.
func (r *Router) resolvePath(path []types.Address) ([]*amm.Pool, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	pools := make([]*amm.Pool, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		if path[i] == path[i+1] {
			return nil, ErrInvalidPath
		}
		pool := r.factory.FindPool(path[i], path[i+1])
		if pool == nil {
			return nil, amm.ErrPoolNotFound
		}
		pools[i] = pool
	}
	return pools, nil
}

// poolSim is a working copy of one pool's swap-pricing state used to quote a
// hop chain. Reserves mutate as hops are simulated, so a path that crosses
// the same pool twice prices its second visit against the post-first-hop
// reserves, exactly as sequential execution will.
type poolSim struct {
	token0   types.Address
	reserve0 *big.Int
	reserve1 *big.Int
	feeRate  uint16
}

func (s *poolSim) swap(tokenIn types.Address, amountIn *big.Int) (out, fee *big.Int) {
	reserveIn, reserveOut := s.reserve0, s.reserve1
	if tokenIn != s.token0 {
		reserveIn, reserveOut = s.reserve1, s.reserve0
	}
	out, fee = amm.AmountOut(reserveIn, reserveOut, amountIn, s.feeRate)
	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, out)
	return out, fee
}

// quotePath simulates the hop chain hop by hop. One simulated state is kept
// per distinct pool, so the quote matches sequential execution even when the
// path revisits a pool.
func quotePath(pools []*amm.Pool, path []types.Address, amountIn *big.Int) (*PathQuote, error) {
	quote := &PathQuote{
		TotalFee:   new(big.Int),
		HopAmounts: make([]*big.Int, len(pools)),
		HopFees:    make([]*big.Int, len(pools)),
	}
	sims := make(map[*amm.Pool]*poolSim, len(pools))
	hopIn := amountIn
	for i, pool := range pools {
		if hopIn == nil || hopIn.Sign() <= 0 {
			return nil, amm.ErrInsufficientInput
		}
		sim := sims[pool]
		if sim == nil {
			reserve0, reserve1 := pool.Reserves()
			sim = &poolSim{
				token0:   pool.Token0(),
				reserve0: reserve0,
				reserve1: reserve1,
				feeRate:  pool.FeeRate(),
			}
			sims[pool] = sim
		}
		out, fee := sim.swap(path[i], hopIn)
		quote.HopAmounts[i] = out
		quote.HopFees[i] = fee
		quote.TotalFee.Add(quote.TotalFee, fee)
		hopIn = out
	}
	quote.AmountOut = types.CloneAmount(hopIn)
	return quote, nil
}

func meetsMinimum(value, minimum *big.Int) bool {
	if minimum == nil || minimum.Sign() <= 0 {
		return true
	}
	return value.Cmp(minimum) >= 0
}
