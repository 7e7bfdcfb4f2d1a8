package amm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerlouan/goswapd/internal/core/ledger"
	"github.com/kerlouan/goswapd/internal/core/types"
	"github.com/kerlouan/goswapd/internal/events"
)

var (
	admin  = types.MustParseAddress("0x00000000000000000000000000000000000000ad")
	alice  = types.MustParseAddress("0x00000000000000000000000000000000000000aa")
	bob    = types.MustParseAddress("0x00000000000000000000000000000000000000bb")
	tokenA = types.MustParseAddress("0x0000000000000000000000000000000000000001")
	tokenB = types.MustParseAddress("0x0000000000000000000000000000000000000002")
	tokenC = types.MustParseAddress("0x0000000000000000000000000000000000000003")
)

type poolFixture struct {
	pool    *Pool
	factory *Factory
	tokens  *ledger.MemoryLedger
	bus     *events.Bus
	emitted []events.Event
}

// newPoolFixture builds a tokenA/tokenB pool with feeBps, funding alice and
// bob generously in both tokens.
func newPoolFixture(t *testing.T, feeBps uint16) *poolFixture {
	t.Helper()

	fx := &poolFixture{
		tokens: ledger.NewMemoryLedger(),
		bus:    events.NewBus(),
	}
	fx.bus.Subscribe(func(ev events.Event) { fx.emitted = append(fx.emitted, ev) })
	fx.factory = NewFactory(admin, 30, fx.tokens, fx.bus)

	pool, err := fx.factory.CreatePoolWithFee(tokenA, tokenB, feeBps)
	require.NoError(t, err)
	fx.pool = pool

	for _, holder := range []types.Address{alice, bob} {
		for _, token := range []types.Address{tokenA, tokenB, tokenC} {
			fx.tokens.Mint(holder, token, big.NewInt(1_000_000))
		}
	}
	return fx
}

func (fx *poolFixture) lastEvent() events.Event {
	if len(fx.emitted) == 0 {
		return nil
	}
	return fx.emitted[len(fx.emitted)-1]
}

func TestFirstDepositFixesInitialRatio(t *testing.T) {
	fx := newPoolFixture(t, 30)

	amount1, lpMinted, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	// INITIAL_RATIO = 2: 100 token0 pulls 200 token1 and mints 100 LP.
	assert.Equal(t, big.NewInt(200), amount1)
	assert.Equal(t, big.NewInt(100), lpMinted)

	r0, r1 := fx.pool.Reserves()
	assert.Equal(t, big.NewInt(100), r0)
	assert.Equal(t, big.NewInt(200), r1)
	assert.Equal(t, big.NewInt(100), fx.pool.TotalLPSupply())
	assert.Equal(t, big.NewInt(100), fx.pool.LPBalance(alice))

	// Both legs actually left alice's ledger account.
	assert.Equal(t, big.NewInt(999_900), fx.tokens.BalanceOf(alice, tokenA))
	assert.Equal(t, big.NewInt(999_800), fx.tokens.BalanceOf(alice, tokenB))

	ev, ok := fx.lastEvent().(events.AddedLiquidity)
	require.True(t, ok)
	assert.Equal(t, alice, ev.Provider)
	assert.Equal(t, big.NewInt(100), ev.Amount0)
	assert.Equal(t, big.NewInt(200), ev.Amount1)
	assert.Equal(t, big.NewInt(100), ev.LPMinted)
}

func TestSecondDepositFollowsReserveRatio(t *testing.T) {
	fx := newPoolFixture(t, 30)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	amount1, lpMinted, err := fx.pool.AddLiquidity(bob, big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), amount1) // 50 * 200/100
	assert.Equal(t, big.NewInt(50), lpMinted) // 50 * 100/100

	req, err := fx.pool.GetRequiredAmount1(big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), req)
}

func TestAddLiquidityRejectsZeroAmount(t *testing.T) {
	fx := newPoolFixture(t, 30)

	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(0))
	assert.ErrorIs(t, err, ErrInsufficientInput)
	_, _, err = fx.pool.AddLiquidity(alice, nil)
	assert.ErrorIs(t, err, ErrInsufficientInput)
	_, err = fx.pool.GetRequiredAmount1(big.NewInt(-5))
	assert.ErrorIs(t, err, ErrInsufficientInput)
}

func TestAddLiquidityRefundsFirstLegWhenSecondFails(t *testing.T) {
	fx := newPoolFixture(t, 30)

	// Bob can fund token0 but not the 2x token1 leg.
	poor := types.MustParseAddress("0x00000000000000000000000000000000000000cc")
	fx.tokens.Mint(poor, tokenA, big.NewInt(100))
	fx.tokens.Mint(poor, tokenB, big.NewInt(100))

	_, _, err := fx.pool.AddLiquidity(poor, big.NewInt(100))
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// No partial state: balances, reserves, and supply are untouched.
	assert.Equal(t, big.NewInt(100), fx.tokens.BalanceOf(poor, tokenA))
	assert.Equal(t, big.NewInt(100), fx.tokens.BalanceOf(poor, tokenB))
	r0, r1 := fx.pool.Reserves()
	assert.Zero(t, r0.Sign())
	assert.Zero(t, r1.Sign())
	assert.Zero(t, fx.pool.TotalLPSupply().Sign())
}

func TestSwapZeroFeeScenario(t *testing.T) {
	fx := newPoolFixture(t, 0)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	out, err := fx.pool.Swap(bob, tokenA, big.NewInt(100), tokenB)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), out)

	r0, r1 := fx.pool.Reserves()
	assert.Equal(t, big.NewInt(200), r0)
	assert.Equal(t, big.NewInt(100), r1)
}

func TestSwapWithFeeScenario(t *testing.T) {
	fx := newPoolFixture(t, 30)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	// amountInEff = 100*9970/10000 = 99 (truncated), out = 200*99/199 = 99.
	out, fee, err := fx.pool.GetAmountOut(tokenA, big.NewInt(100), tokenB)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(99), out)
	assert.Equal(t, big.NewInt(1), fee)

	got, err := fx.pool.Swap(bob, tokenA, big.NewInt(100), tokenB)
	require.NoError(t, err)
	assert.Equal(t, out, got, "swap must produce exactly what the quote promised")

	ev, ok := fx.lastEvent().(events.Swapped)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(100), ev.AmountIn)
	assert.Equal(t, big.NewInt(99), ev.AmountOut)
	assert.Equal(t, big.NewInt(1), ev.Fee)
}

func TestSwapArgumentValidation(t *testing.T) {
	fx := newPoolFixture(t, 30)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	_, err = fx.pool.Swap(bob, tokenA, big.NewInt(10), tokenA)
	assert.ErrorIs(t, err, ErrIdenticalTokens)
	_, err = fx.pool.Swap(bob, tokenC, big.NewInt(10), tokenB)
	assert.ErrorIs(t, err, ErrTokenNotInPair)
	_, err = fx.pool.Swap(bob, tokenA, big.NewInt(0), tokenB)
	assert.ErrorIs(t, err, ErrInsufficientInput)
}

func TestConstantProductNeverDecreases(t *testing.T) {
	for _, feeBps := range []uint16{0, 1, 30, 100} {
		fx := newPoolFixture(t, feeBps)
		_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(10_000))
		require.NoError(t, err)

		product := func() *big.Int {
			r0, r1 := fx.pool.Reserves()
			return new(big.Int).Mul(r0, r1)
		}

		prev := product()
		swaps := []struct {
			in     types.Address
			out    types.Address
			amount int64
		}{
			{tokenA, tokenB, 137}, {tokenB, tokenA, 9999}, {tokenA, tokenB, 1},
			{tokenB, tokenA, 313}, {tokenA, tokenB, 5000}, {tokenB, tokenA, 7},
		}
		for _, s := range swaps {
			_, err := fx.pool.Swap(bob, s.in, big.NewInt(s.amount), s.out)
			require.NoError(t, err)
			cur := product()
			assert.Truef(t, cur.Cmp(prev) >= 0,
				"fee=%d: product decreased from %s to %s", feeBps, prev, cur)
			prev = cur
		}
	}
}

func TestQuoteMatchesSwapAcrossStates(t *testing.T) {
	fx := newPoolFixture(t, 30)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(5_000))
	require.NoError(t, err)

	for _, amount := range []int64{1, 13, 100, 999, 12_345} {
		quoted, _, err := fx.pool.GetAmountOut(tokenA, big.NewInt(amount), tokenB)
		require.NoError(t, err)
		got, err := fx.pool.Swap(bob, tokenA, big.NewInt(amount), tokenB)
		require.NoError(t, err)
		assert.Equal(t, quoted, got, "amount=%d", amount)
	}
}

func TestWithdrawRoundTrip(t *testing.T) {
	fx := newPoolFixture(t, 0)
	_, lpMinted, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	a0, a1, err := fx.pool.PreviewWithdraw(lpMinted)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), a0)
	assert.Equal(t, big.NewInt(200), a1)

	got0, got1, err := fx.pool.WithdrawLiquidity(alice, lpMinted)
	require.NoError(t, err)
	assert.Equal(t, a0, got0)
	assert.Equal(t, a1, got1)

	// Ledger round trip is exact when no swap intervened.
	assert.Equal(t, big.NewInt(1_000_000), fx.tokens.BalanceOf(alice, tokenA))
	assert.Equal(t, big.NewInt(1_000_000), fx.tokens.BalanceOf(alice, tokenB))
	assert.Zero(t, fx.pool.TotalLPSupply().Sign())
}

func TestWithdrawAfterSwapTruncatesAgainstDepositor(t *testing.T) {
	fx := newPoolFixture(t, 0)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)
	_, err = fx.pool.Swap(bob, tokenA, big.NewInt(100), tokenB)
	require.NoError(t, err)

	// Reserves are now (200, 100). Bob deposits 7 token0: amount1 = 7*100/200
	// = 3 (truncated), lp = 7*100/200 = 3.
	amount1, lpMinted, err := fx.pool.AddLiquidity(bob, big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), amount1)
	assert.Equal(t, big.NewInt(3), lpMinted)

	got0, got1, err := fx.pool.WithdrawLiquidity(bob, lpMinted)
	require.NoError(t, err)
	// 3*207/103 = 6, 3*103/103 = 3: never more than deposited.
	assert.True(t, got0.Cmp(big.NewInt(7)) <= 0)
	assert.True(t, got1.Cmp(big.NewInt(3)) <= 0)
}

func TestWithdrawValidation(t *testing.T) {
	fx := newPoolFixture(t, 30)
	_, lpMinted, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	_, _, err = fx.pool.WithdrawLiquidity(alice, big.NewInt(0))
	assert.ErrorIs(t, err, ErrInsufficientInput)
	_, _, err = fx.pool.WithdrawLiquidity(alice, new(big.Int).Add(lpMinted, big.NewInt(1)))
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	_, _, err = fx.pool.WithdrawLiquidity(bob, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestPoolShareProjections(t *testing.T) {
	fx := newPoolFixture(t, 30)
	assert.EqualValues(t, 0, fx.pool.UserPoolShare(alice), "share is 0 with no supply")

	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)
	assert.EqualValues(t, 10_000, fx.pool.UserPoolShare(alice), "sole holder owns the whole pool")

	_, _, err = fx.pool.AddLiquidity(bob, big.NewInt(50))
	require.NoError(t, err)

	shareA := fx.pool.UserPoolShare(alice)
	shareB := fx.pool.UserPoolShare(bob)
	assert.EqualValues(t, 6666, shareA)
	assert.EqualValues(t, 3333, shareB)
	assert.LessOrEqual(t, shareA+shareB, uint32(10_000))

	a0, a1 := fx.pool.UserLiquidityPosition(bob)
	assert.Equal(t, big.NewInt(50), a0)
	assert.Equal(t, big.NewInt(100), a1)
}

func TestFeeAccrualAndClaim(t *testing.T) {
	fx := newPoolFixture(t, 30)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	_, err = fx.pool.Swap(bob, tokenA, big.NewInt(100), tokenB)
	require.NoError(t, err)

	pend0, pend1 := fx.pool.PendingFees(alice)
	assert.Equal(t, big.NewInt(1), pend0, "30bps of 100 token0 in")
	assert.Zero(t, pend1.Sign())

	before := fx.tokens.BalanceOf(alice, tokenA)
	fee0, fee1, err := fx.pool.ClaimFees(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), fee0)
	assert.Zero(t, fee1.Sign())
	assert.Equal(t, new(big.Int).Add(before, big.NewInt(1)), fx.tokens.BalanceOf(alice, tokenA))

	// A second claim has nothing pending and is a silent no-op.
	fee0, fee1, err = fx.pool.ClaimFees(alice)
	require.NoError(t, err)
	assert.Zero(t, fee0.Sign())
	assert.Zero(t, fee1.Sign())

	// Non-holders claim nothing, without error.
	fee0, fee1, err = fx.pool.ClaimFees(bob)
	require.NoError(t, err)
	assert.Zero(t, fee0.Sign())
	assert.Zero(t, fee1.Sign())
}

func TestFeeCheckpointSurvivesBalanceChanges(t *testing.T) {
	fx := newPoolFixture(t, 100)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(1_000))
	require.NoError(t, err)

	// Fee accrues while alice is the only holder.
	_, err = fx.pool.Swap(bob, tokenA, big.NewInt(1_000), tokenB)
	require.NoError(t, err)
	pend0, _ := fx.pool.PendingFees(alice)
	assert.Equal(t, big.NewInt(10), pend0)

	// Bob joins afterwards; the earlier fee stays alice's even though her
	// deposit re-settles her checkpoint.
	_, _, err = fx.pool.AddLiquidity(bob, big.NewInt(1_000))
	require.NoError(t, err)
	pendBob0, _ := fx.pool.PendingFees(bob)
	assert.Zero(t, pendBob0.Sign())
	pend0, _ = fx.pool.PendingFees(alice)
	assert.Equal(t, big.NewInt(10), pend0)
}

func TestSetFeeRate(t *testing.T) {
	fx := newPoolFixture(t, 30)

	require.NoError(t, fx.pool.SetFeeRate(admin, 100))
	assert.EqualValues(t, 100, fx.pool.FeeRate())

	ev, ok := fx.lastEvent().(events.FeeRateUpdated)
	require.True(t, ok)
	assert.EqualValues(t, 30, ev.OldBps)
	assert.EqualValues(t, 100, ev.NewBps)

	assert.ErrorIs(t, fx.pool.SetFeeRate(admin, 101), ErrInvalidFee)
	assert.ErrorIs(t, fx.pool.SetFeeRate(alice, 10), ErrNotFeeAdmin)
}

func TestSetFeeAdmin(t *testing.T) {
	fx := newPoolFixture(t, 30)

	assert.ErrorIs(t, fx.pool.SetFeeAdmin(alice, bob), ErrNotFeeAdmin)
	assert.ErrorIs(t, fx.pool.SetFeeAdmin(admin, types.ZeroAddress), ErrZeroAddress)

	require.NoError(t, fx.pool.SetFeeAdmin(admin, alice))
	assert.Equal(t, alice, fx.pool.FeeAdmin())

	// Authority moved atomically: the old admin is locked out.
	assert.ErrorIs(t, fx.pool.SetFeeRate(admin, 10), ErrNotFeeAdmin)
	require.NoError(t, fx.pool.SetFeeRate(alice, 10))
}

func TestExecuteSwapRequiresRouterAuthorization(t *testing.T) {
	fx := newPoolFixture(t, 30)
	_, _, err := fx.pool.AddLiquidity(alice, big.NewInt(100))
	require.NoError(t, err)

	routerAddr := types.MustParseAddress("0x00000000000000000000000000000000000000ee")
	_, _, err = fx.pool.ExecuteSwap(routerAddr, bob, tokenA, big.NewInt(10), tokenB)
	assert.ErrorIs(t, err, ErrNotAuthorizedRouter)

	require.NoError(t, fx.factory.AuthorizeRouter(admin, routerAddr))
	out, fee, err := fx.pool.ExecuteSwap(routerAddr, bob, tokenA, big.NewInt(10), tokenB)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(16), out) // 200*9/109
	assert.Equal(t, big.NewInt(1), fee)
}
