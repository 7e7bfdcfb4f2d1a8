// Package amm implements the constant-product exchange core: isolated pools
// holding one token pair's reserves and LP claim ledger, and the factory that
// maps canonical pairs to pools.
package amm

import (
	"math/big"
	"sync"

	"github.com/kerlouan/goswapd/internal/core/ledger"
	"github.com/kerlouan/goswapd/internal/core/types"
	"github.com/kerlouan/goswapd/internal/events"
)

// holderState is one LP holder's claim ledger entry. checkpoint0/1 bookmark
// the pool's fee-per-share accumulators at the holder's last settlement;
// owed0/1 hold settled-but-unclaimed fees so LP balance changes never lose
// accrued value.
type holderState struct {
	lp          *big.Int
	checkpoint0 *big.Int
	checkpoint1 *big.Int
	owed0       *big.Int
	owed1       *big.Int
}

func newHolderState() *holderState {
	return &holderState{
		lp:          new(big.Int),
		checkpoint0: new(big.Int),
		checkpoint1: new(big.Int),
		owed0:       new(big.Int),
		owed1:       new(big.Int),
	}
}

// Pool owns one pair's reserves, LP supply, and fee policy. token0 < token1
// always holds; the factory canonicalizes before construction. The mutex
// spans every read-modify-write of the reserve/LP/fee-accumulator triple;
// events are emitted after the guarded section commits.
type Pool struct {
	mu sync.RWMutex

	token0 types.Address
	token1 types.Address

	reserve0    *big.Int
	reserve1    *big.Int
	totalSupply *big.Int
	holders     map[types.Address]*holderState

	feeRate  uint16
	feeAdmin types.Address

	// Fee-per-share accumulators, scaled by accPrecision. accFee0 collects
	// fees paid in token0 (token0-in swaps), accFee1 in token1. Fees live
	// outside the reserves so claims never move the constant product.
	accFee0 *big.Int
	accFee1 *big.Int

	tokens   ledger.TokenLedger
	bus      *events.Bus
	isRouter func(types.Address) bool
}

func newPool(token0, token1 types.Address, feeRate uint16, feeAdmin types.Address,
	tokens ledger.TokenLedger, bus *events.Bus, isRouter func(types.Address) bool) *Pool {
	return &Pool{
		token0:      token0,
		token1:      token1,
		reserve0:    new(big.Int),
		reserve1:    new(big.Int),
		totalSupply: new(big.Int),
		holders:     make(map[types.Address]*holderState),
		feeRate:     feeRate,
		feeAdmin:    feeAdmin,
		accFee0:     new(big.Int),
		accFee1:     new(big.Int),
		tokens:      tokens,
		bus:         bus,
		isRouter:    isRouter,
	}
}

// Token0 returns the canonical lower token of the pair.
func (p *Pool) Token0() types.Address { return p.token0 }

// Token1 returns the canonical higher token of the pair.
func (p *Pool) Token1() types.Address { return p.token1 }

// FeeRate returns the pool's fee in basis points.
func (p *Pool) FeeRate() uint16 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feeRate
}

// FeeAdmin returns the current fee authority.
func (p *Pool) FeeAdmin() types.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feeAdmin
}

// Reserves returns copies of the current reserves.
func (p *Pool) Reserves() (reserve0, reserve1 *big.Int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return types.CloneAmount(p.reserve0), types.CloneAmount(p.reserve1)
}

// TotalLPSupply returns a copy of the outstanding LP token supply.
func (p *Pool) TotalLPSupply() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return types.CloneAmount(p.totalSupply)
}

// GetRequiredAmount1 quotes the token1 leg a deposit of amount0 would pull.
// Pure; mirrors AddLiquidity's ratio math exactly.
func (p *Pool) GetRequiredAmount1(amount0 *big.Int) (*big.Int, error) {
	if !types.IsPositive(amount0) {
		return nil, ErrInsufficientInput
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return RequiredAmount1(p.reserve0, p.reserve1, p.totalSupply, amount0), nil
}

// AddLiquidity deposits amount0 of token0 plus the matching token1 leg and
// mints LP tokens to provider. Both legs are pulled atomically: allowances
// are checked up front and a failed second pull refunds the first. The first
// deposit fixes the pool price at InitialRatio.
func (p *Pool) AddLiquidity(provider types.Address, amount0 *big.Int) (amount1, lpMinted *big.Int, err error) {
	if !types.IsPositive(amount0) {
		return nil, nil, ErrInsufficientInput
	}

	p.mu.Lock()

	amount1 = RequiredAmount1(p.reserve0, p.reserve1, p.totalSupply, amount0)
	lpMinted = liquidityMinted(p.reserve0, p.totalSupply, amount0)

	if err := p.tokens.AllowanceCheck(provider, p.token0, amount0); err != nil {
		p.mu.Unlock()
		return nil, nil, err
	}
	if err := p.tokens.AllowanceCheck(provider, p.token1, amount1); err != nil {
		p.mu.Unlock()
		return nil, nil, err
	}
	if err := p.tokens.TransferIn(provider, p.token0, amount0); err != nil {
		p.mu.Unlock()
		return nil, nil, err
	}
	if err := p.tokens.TransferIn(provider, p.token1, amount1); err != nil {
		// Compensate the committed first leg.
		_ = p.tokens.TransferOut(provider, p.token0, amount0)
		p.mu.Unlock()
		return nil, nil, err
	}

	h := p.holderRef(provider)
	p.settleLocked(h)

	h.lp.Add(h.lp, lpMinted)
	p.totalSupply.Add(p.totalSupply, lpMinted)
	p.reserve0.Add(p.reserve0, amount0)
	p.reserve1.Add(p.reserve1, amount1)

	p.mu.Unlock()

	p.bus.Emit(events.AddedLiquidity{
		Token0:   p.token0,
		Token1:   p.token1,
		Provider: provider,
		Amount0:  types.CloneAmount(amount0),
		Amount1:  types.CloneAmount(amount1),
		LPMinted: types.CloneAmount(lpMinted),
	})

	return amount1, lpMinted, nil
}

// PreviewAddLiquidity quotes the token1 leg and LP minted for a deposit of
// amount0 without touching state.
func (p *Pool) PreviewAddLiquidity(amount0 *big.Int) (amount1, lpMinted *big.Int, err error) {
	if !types.IsPositive(amount0) {
		return nil, nil, ErrInsufficientInput
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	amount1 = RequiredAmount1(p.reserve0, p.reserve1, p.totalSupply, amount0)
	lpMinted = liquidityMinted(p.reserve0, p.totalSupply, amount0)
	return amount1, lpMinted, nil
}

// GetAmountOut quotes a swap without touching state. The returned amounts
// match what Swap would produce for identical pre-state and inputs.
func (p *Pool) GetAmountOut(tokenIn types.Address, amountIn *big.Int, tokenOut types.Address) (amountOut, fee *big.Int, err error) {
	if err := p.checkSwapArgs(tokenIn, amountIn, tokenOut); err != nil {
		return nil, nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	reserveIn, reserveOut := p.orientedReserves(tokenIn)
	out, feeAmt := AmountOut(reserveIn, reserveOut, amountIn, p.feeRate)
	return out, feeAmt, nil
}

// Swap trades amountIn of tokenIn for tokenOut against the pool, moving both
// legs through the token ledger. The fee is carved off the input and credited
// to the LP fee accumulator; the gross input is custodied in the reserve.
func (p *Pool) Swap(trader types.Address, tokenIn types.Address, amountIn *big.Int, tokenOut types.Address) (*big.Int, error) {
	if err := p.checkSwapArgs(tokenIn, amountIn, tokenOut); err != nil {
		return nil, err
	}

	p.mu.Lock()

	if err := p.tokens.TransferIn(trader, tokenIn, amountIn); err != nil {
		p.mu.Unlock()
		return nil, err
	}

	out, fee := p.swapLocked(tokenIn, amountIn)

	if err := p.tokens.TransferOut(trader, tokenOut, out); err != nil {
		// The ledger refused a credit the reserves can cover; unwind the
		// debit and abort with no observable effect.
		p.unswapLocked(tokenIn, amountIn, out, fee)
		_ = p.tokens.TransferOut(trader, tokenIn, amountIn)
		p.mu.Unlock()
		return nil, err
	}

	p.mu.Unlock()

	p.emitSwapped(trader, tokenIn, amountIn, tokenOut, out, fee)
	return out, nil
}

// ExecuteSwap applies a swap at the reserve level without ledger transfers.
// Custody of the traded tokens stays inside the engine, which is what lets a
// router chain hops atomically with a single debit and a single credit at the
// path boundaries. Only factory-authorized routers may call it. The caller
// owns event emission: hops of a chained trade are announced only once the
// whole chain has committed.
func (p *Pool) ExecuteSwap(caller, trader types.Address, tokenIn types.Address, amountIn *big.Int, tokenOut types.Address) (amountOut, fee *big.Int, err error) {
	if p.isRouter == nil || !p.isRouter(caller) {
		return nil, nil, ErrNotAuthorizedRouter
	}
	if err := p.checkSwapArgs(tokenIn, amountIn, tokenOut); err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	out, feeAmt := p.swapLocked(tokenIn, amountIn)
	p.mu.Unlock()

	return out, feeAmt, nil
}

// RewindSwap reverses a reserve-level swap previously applied through
// ExecuteSwap. Routers use it to abort a chained trade whose final ledger
// credit failed, before any of the hops became observable. Arguments must
// match the ExecuteSwap call being undone.
func (p *Pool) RewindSwap(caller, tokenIn types.Address, amountIn, amountOut, fee *big.Int) error {
	if p.isRouter == nil || !p.isRouter(caller) {
		return ErrNotAuthorizedRouter
	}
	p.mu.Lock()
	p.unswapLocked(tokenIn, amountIn, amountOut, fee)
	p.mu.Unlock()
	return nil
}

// EmitSwapped publishes a Swapped event for a trade already applied through
// ExecuteSwap. Routers call it per hop after the chain commits.
func (p *Pool) EmitSwapped(trader, tokenIn types.Address, amountIn *big.Int, tokenOut types.Address, out, fee *big.Int) {
	p.emitSwapped(trader, tokenIn, amountIn, tokenOut, out, fee)
}

// swapLocked updates reserves and fee accumulators for a tokenIn swap.
// Callers must hold p.mu and have validated the arguments.
func (p *Pool) swapLocked(tokenIn types.Address, amountIn *big.Int) (out, fee *big.Int) {
	reserveIn, reserveOut := p.orientedReserves(tokenIn)

	out, fee = AmountOut(reserveIn, reserveOut, amountIn, p.feeRate)

	// The full gross input is custodied in the reserve; only the
	// fee-adjusted portion priced the trade, which is why the constant
	// product never decreases. The fee's claim is tracked separately in
	// the per-share accumulator.
	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, out)
	p.accrueFeeLocked(tokenIn, fee)

	return out, fee
}

// unswapLocked reverses swapLocked with the same arguments. Only used on the
// ledger-credit failure path before the operation becomes observable.
func (p *Pool) unswapLocked(tokenIn types.Address, amountIn, out, fee *big.Int) {
	reserveIn, reserveOut := p.orientedReserves(tokenIn)
	reserveIn.Sub(reserveIn, amountIn)
	reserveOut.Add(reserveOut, out)
	p.accrueFeeLocked(tokenIn, new(big.Int).Neg(fee))
}

// accrueFeeLocked credits fee (denominated in tokenIn) to the matching
// per-share accumulator. With no LP supply there is no one to accrue to and
// the fee simply stays in the reserve.
func (p *Pool) accrueFeeLocked(tokenIn types.Address, fee *big.Int) {
	if fee.Sign() == 0 || p.totalSupply.Sign() == 0 {
		return
	}

	delta := new(big.Int).Mul(fee, accPrecision)
	delta.Quo(delta, p.totalSupply)
	if tokenIn == p.token0 {
		p.accFee0.Add(p.accFee0, delta)
	} else {
		p.accFee1.Add(p.accFee1, delta)
	}
}

// PreviewWithdraw quotes the reserve share an LP burn would release.
func (p *Pool) PreviewWithdraw(lpAmount *big.Int) (amount0, amount1 *big.Int, err error) {
	if !types.IsPositive(lpAmount) {
		return nil, nil, ErrInsufficientInput
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.totalSupply.Cmp(lpAmount) < 0 {
		return nil, nil, ErrInsufficientLiquidity
	}
	amount0, amount1 = withdrawAmounts(p.reserve0, p.reserve1, p.totalSupply, lpAmount)
	return amount0, amount1, nil
}

// WithdrawLiquidity burns lpAmount of provider's LP tokens and pays out the
// proportional reserve share through the token ledger.
func (p *Pool) WithdrawLiquidity(provider types.Address, lpAmount *big.Int) (amount0, amount1 *big.Int, err error) {
	if !types.IsPositive(lpAmount) {
		return nil, nil, ErrInsufficientInput
	}

	p.mu.Lock()

	h, ok := p.holders[provider]
	if !ok || h.lp.Cmp(lpAmount) < 0 {
		p.mu.Unlock()
		return nil, nil, ErrInsufficientLiquidity
	}

	p.settleLocked(h)

	amount0, amount1 = withdrawAmounts(p.reserve0, p.reserve1, p.totalSupply, lpAmount)

	h.lp.Sub(h.lp, lpAmount)
	p.totalSupply.Sub(p.totalSupply, lpAmount)
	p.reserve0.Sub(p.reserve0, amount0)
	p.reserve1.Sub(p.reserve1, amount1)

	if err := p.tokens.TransferOut(provider, p.token0, amount0); err != nil {
		p.restoreWithdrawLocked(h, lpAmount, amount0, amount1)
		p.mu.Unlock()
		return nil, nil, err
	}
	if err := p.tokens.TransferOut(provider, p.token1, amount1); err != nil {
		_ = p.tokens.TransferIn(provider, p.token0, amount0)
		p.restoreWithdrawLocked(h, lpAmount, amount0, amount1)
		p.mu.Unlock()
		return nil, nil, err
	}

	p.mu.Unlock()

	p.bus.Emit(events.WithdrawnLiquidity{
		Token0:   p.token0,
		Token1:   p.token1,
		Provider: provider,
		LPBurned: types.CloneAmount(lpAmount),
		Amount0:  types.CloneAmount(amount0),
		Amount1:  types.CloneAmount(amount1),
	})
	return amount0, amount1, nil
}

func (p *Pool) restoreWithdrawLocked(h *holderState, lpAmount, amount0, amount1 *big.Int) {
	h.lp.Add(h.lp, lpAmount)
	p.totalSupply.Add(p.totalSupply, lpAmount)
	p.reserve0.Add(p.reserve0, amount0)
	p.reserve1.Add(p.reserve1, amount1)
}

// LPBalance returns holder's LP token balance.
func (p *Pool) LPBalance(holder types.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if h, ok := p.holders[holder]; ok {
		return types.CloneAmount(h.lp)
	}
	return new(big.Int)
}

// UserLiquidityPosition projects holder's share of both reserves.
func (p *Pool) UserLiquidityPosition(holder types.Address) (amount0, amount1 *big.Int) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	h, ok := p.holders[holder]
	if !ok || p.totalSupply.Sign() == 0 {
		return new(big.Int), new(big.Int)
	}
	return withdrawAmounts(p.reserve0, p.reserve1, p.totalSupply, h.lp)
}

// UserPoolShare returns holder's pool share in basis points, 0 when no LP
// supply exists.
func (p *Pool) UserPoolShare(holder types.Address) uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	h, ok := p.holders[holder]
	if !ok || p.totalSupply.Sign() == 0 {
		return 0
	}
	share := new(big.Int).Mul(h.lp, feeDenom)
	share.Quo(share, p.totalSupply)
	return uint32(share.Uint64())
}

// PendingFees projects the fees holder could claim right now.
func (p *Pool) PendingFees(holder types.Address) (fee0, fee1 *big.Int) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	h, ok := p.holders[holder]
	if !ok {
		return new(big.Int), new(big.Int)
	}
	pend0, pend1 := p.pendingLocked(h)
	return pend0.Add(pend0, h.owed0), pend1.Add(pend1, h.owed1)
}

// ClaimFees settles and pays out holder's accrued swap fees. Claiming with
// nothing pending is a no-op, not an error.
func (p *Pool) ClaimFees(holder types.Address) (fee0, fee1 *big.Int, err error) {
	p.mu.Lock()

	h, ok := p.holders[holder]
	if !ok {
		p.mu.Unlock()
		return new(big.Int), new(big.Int), nil
	}

	p.settleLocked(h)
	fee0 = types.CloneAmount(h.owed0)
	fee1 = types.CloneAmount(h.owed1)
	if fee0.Sign() == 0 && fee1.Sign() == 0 {
		p.mu.Unlock()
		return fee0, fee1, nil
	}

	if err := p.tokens.TransferOut(holder, p.token0, fee0); err != nil {
		p.mu.Unlock()
		return nil, nil, err
	}
	if err := p.tokens.TransferOut(holder, p.token1, fee1); err != nil {
		_ = p.tokens.TransferIn(holder, p.token0, fee0)
		p.mu.Unlock()
		return nil, nil, err
	}

	h.owed0.SetInt64(0)
	h.owed1.SetInt64(0)

	p.mu.Unlock()

	p.bus.Emit(events.FeesClaimed{
		Token0: p.token0,
		Token1: p.token1,
		Holder: holder,
		Fee0:   types.CloneAmount(fee0),
		Fee1:   types.CloneAmount(fee1),
	})

	return fee0, fee1, nil
}

// SetFeeRate updates the pool fee. Only the fee admin may call it and the
// hard cap is MaxPoolFeeBps.
func (p *Pool) SetFeeRate(caller types.Address, feeBps uint16) error {
	if feeBps > MaxPoolFeeBps {
		return ErrInvalidFee
	}

	p.mu.Lock()
	if caller != p.feeAdmin {
		p.mu.Unlock()
		return ErrNotFeeAdmin
	}
	old := p.feeRate
	p.feeRate = feeBps
	p.mu.Unlock()

	p.bus.Emit(events.FeeRateUpdated{Token0: p.token0, Token1: p.token1, OldBps: old, NewBps: feeBps})
	return nil
}

// SetFeeAdmin transfers the single fee authority.
func (p *Pool) SetFeeAdmin(caller, newAdmin types.Address) error {
	if newAdmin.IsZero() {
		return ErrZeroAddress
	}

	p.mu.Lock()
	if caller != p.feeAdmin {
		p.mu.Unlock()
		return ErrNotFeeAdmin
	}
	old := p.feeAdmin
	p.feeAdmin = newAdmin
	p.mu.Unlock()

	p.bus.Emit(events.FeeAdminUpdated{Token0: p.token0, Token1: p.token1, OldAdmin: old, NewAdmin: newAdmin})
	return nil
}

// checkSwapArgs validates the token pair and amount of a swap or quote.
func (p *Pool) checkSwapArgs(tokenIn types.Address, amountIn *big.Int, tokenOut types.Address) error {
	if tokenIn == tokenOut {
		return ErrIdenticalTokens
	}
	if (tokenIn != p.token0 && tokenIn != p.token1) || (tokenOut != p.token0 && tokenOut != p.token1) {
		return ErrTokenNotInPair
	}
	if !types.IsPositive(amountIn) {
		return ErrInsufficientInput
	}
	return nil
}

// orientedReserves returns (reserveIn, reserveOut) for the given input token.
// The returned pointers alias pool state; callers must hold p.mu.
func (p *Pool) orientedReserves(tokenIn types.Address) (reserveIn, reserveOut *big.Int) {
	if tokenIn == p.token0 {
		return p.reserve0, p.reserve1
	}
	return p.reserve1, p.reserve0
}

// settleLocked folds holder's accrued per-share fees into the owed buckets
// and advances the checkpoints. Must run before any LP balance change.
func (p *Pool) settleLocked(h *holderState) {
	pend0, pend1 := p.pendingLocked(h)
	h.owed0.Add(h.owed0, pend0)
	h.owed1.Add(h.owed1, pend1)
	h.checkpoint0.Set(p.accFee0)
	h.checkpoint1.Set(p.accFee1)
}

func (p *Pool) pendingLocked(h *holderState) (pend0, pend1 *big.Int) {
	pend0 = new(big.Int).Sub(p.accFee0, h.checkpoint0)
	pend0.Mul(pend0, h.lp)
	pend0.Quo(pend0, accPrecision)

	pend1 = new(big.Int).Sub(p.accFee1, h.checkpoint1)
	pend1.Mul(pend1, h.lp)
	pend1.Quo(pend1, accPrecision)
	return pend0, pend1
}

func (p *Pool) holderRef(holder types.Address) *holderState {
	h, ok := p.holders[holder]
	if !ok {
		h = newHolderState()
		p.holders[holder] = h
	}
	return h
}

func (p *Pool) emitSwapped(trader, tokenIn types.Address, amountIn *big.Int, tokenOut types.Address, out, fee *big.Int) {
	p.bus.Emit(events.Swapped{
		Token0:    p.token0,
		Token1:    p.token1,
		Trader:    trader,
		TokenIn:   tokenIn,
		AmountIn:  types.CloneAmount(amountIn),
		TokenOut:  tokenOut,
		AmountOut: types.CloneAmount(out),
		Fee:       types.CloneAmount(fee),
	})
}
