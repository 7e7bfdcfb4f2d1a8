package amm

import (
	"sync"

	"github.com/kerlouan/goswapd/internal/core/ledger"
	"github.com/kerlouan/goswapd/internal/core/types"
	"github.com/kerlouan/goswapd/internal/events"
)

// pairKey is a canonical (token0 < token1) registry key.
type pairKey struct {
	token0 types.Address
	token1 types.Address
}

func makePairKey(tokenA, tokenB types.Address) pairKey {
	t0, t1 := types.SortPair(tokenA, tokenB)
	return pairKey{token0: t0, token1: t1}
}

// Factory is the registry mapping each canonical token pair to exactly one
// Pool. It owns the default fee policy and the set of router addresses
// authorized for reserve-level calls.
type Factory struct {
	mu    sync.RWMutex
	pools map[pairKey]*Pool
	// list keeps creation order; index+1 is the pool's public index.
	list           []*Pool
	feeAdmin       types.Address
	defaultFeeRate uint16
	routers        map[types.Address]struct{}
	// version increments on every registry change; route caches key on it.
	version uint64

	tokens ledger.TokenLedger
	bus    *events.Bus
}

// NewFactory builds an empty registry. feeAdmin becomes the fee authority of
// the factory and of every pool it creates.
func NewFactory(feeAdmin types.Address, defaultFeeRate uint16, tokens ledger.TokenLedger, bus *events.Bus) *Factory {
	return &Factory{
		pools:          make(map[pairKey]*Pool),
		feeAdmin:       feeAdmin,
		defaultFeeRate: defaultFeeRate,
		routers:        make(map[types.Address]struct{}),
		tokens:         tokens,
		bus:            bus,
	}
}

// CreatePool registers a pool for the pair at the factory's default fee rate.
func (f *Factory) CreatePool(tokenA, tokenB types.Address) (*Pool, error) {
	f.mu.RLock()
	fee := f.defaultFeeRate
	f.mu.RUnlock()
	return f.CreatePoolWithFee(tokenA, tokenB, fee)
}

// CreatePoolWithFee registers a pool for the pair with an explicit fee rate.
// The pair is canonicalized, so CreatePool(A,B) and CreatePool(B,A) target
// the same registry slot.
func (f *Factory) CreatePoolWithFee(tokenA, tokenB types.Address, feeRate uint16) (*Pool, error) {
	if tokenA == tokenB {
		return nil, ErrIdenticalAddresses
	}
	if tokenA.IsZero() || tokenB.IsZero() {
		return nil, ErrZeroAddress
	}
	if feeRate > MaxPoolFeeBps {
		return nil, ErrInvalidFee
	}

	key := makePairKey(tokenA, tokenB)

	f.mu.Lock()
	if _, exists := f.pools[key]; exists {
		f.mu.Unlock()
		return nil, ErrPoolExists
	}

	pool := newPool(key.token0, key.token1, feeRate, f.feeAdmin, f.tokens, f.bus, f.IsAuthorizedRouter)
	f.pools[key] = pool
	f.list = append(f.list, pool)
	index := len(f.list)
	f.version++
	f.mu.Unlock()

	f.bus.Emit(events.PoolCreated{
		Token0:  key.token0,
		Token1:  key.token1,
		Index:   index,
		FeeRate: feeRate,
	})

	return pool, nil
}

// FindPool returns the pool for the pair, or nil when none is registered.
// Used by routers to probe existence without an error path.
func (f *Factory) FindPool(tokenA, tokenB types.Address) *Pool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pools[makePairKey(tokenA, tokenB)]
}

// GetPool is FindPool with a lookup error for absent pairs.
func (f *Factory) GetPool(tokenA, tokenB types.Address) (*Pool, error) {
	if pool := f.FindPool(tokenA, tokenB); pool != nil {
		return pool, nil
	}
	return nil, ErrPoolNotFound
}

// Pools returns a creation-ordered snapshot of all registered pools.
func (f *Factory) Pools() []*Pool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Pool, len(f.list))
	copy(out, f.list)
	return out
}

// PoolCount returns the number of registered pools.
func (f *Factory) PoolCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.list)
}

// Version returns the registry version, bumped on every pool creation.
func (f *Factory) Version() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.version
}

// FeeAdmin returns the factory's fee authority.
func (f *Factory) FeeAdmin() types.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.feeAdmin
}

// DefaultFeeRate returns the fee applied to pools created without an
// explicit rate.
func (f *Factory) DefaultFeeRate() uint16 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defaultFeeRate
}

// SetFeeAdmin transfers the factory's fee authority.
func (f *Factory) SetFeeAdmin(caller, newAdmin types.Address) error {
	if newAdmin.IsZero() {
		return ErrZeroAddress
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.feeAdmin {
		return ErrNotFeeAdmin
	}
	f.feeAdmin = newAdmin
	return nil
}

// SetDefaultFeeRate updates the default fee for future pools. The bound here
// is the full basis-point scale; the per-pool cap still applies at creation.
func (f *Factory) SetDefaultFeeRate(caller types.Address, feeRate uint16) error {
	if feeRate > MaxDefaultFeeBps {
		return ErrInvalidFee
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.feeAdmin {
		return ErrNotFeeAdmin
	}
	f.defaultFeeRate = feeRate
	return nil
}

// AuthorizeRouter grants addr reserve-level access to every pool.
func (f *Factory) AuthorizeRouter(caller, addr types.Address) error {
	if addr.IsZero() {
		return ErrZeroAddress
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.feeAdmin {
		return ErrNotFeeAdmin
	}
	f.routers[addr] = struct{}{}
	return nil
}

// IsAuthorizedRouter reports whether addr may make reserve-level calls.
func (f *Factory) IsAuthorizedRouter(addr types.Address) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.routers[addr]
	return ok
}
