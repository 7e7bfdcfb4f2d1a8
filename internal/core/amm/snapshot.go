package amm

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/kerlouan/goswapd/internal/core/types"
)

// PoolSnapshot is a pool's full state in storage-friendly form. Amounts are
// decimal strings so the snapshot codec never has to understand big.Int.
type PoolSnapshot struct {
	Token0 string `codec:"token0" json:"token0"`
	Token1 string `codec:"token1" json:"token1"`
	// Index is the pool's 1-based creation index in the registry. Restore
	// replays snapshots in Index order so pool indexing survives restarts.
	Index       int              `codec:"index" json:"index"`
	FeeRate     uint16           `codec:"fee_rate" json:"fee_rate"`
	FeeAdmin    string           `codec:"fee_admin" json:"fee_admin"`
	Reserve0    string           `codec:"reserve0" json:"reserve0"`
	Reserve1    string           `codec:"reserve1" json:"reserve1"`
	TotalSupply string           `codec:"total_supply" json:"total_supply"`
	AccFee0     string           `codec:"acc_fee0" json:"acc_fee0"`
	AccFee1     string           `codec:"acc_fee1" json:"acc_fee1"`
	Holders     []HolderSnapshot `codec:"holders" json:"holders"`
}

// HolderSnapshot is one LP holder's claim state.
type HolderSnapshot struct {
	Address     string `codec:"address" json:"address"`
	LP          string `codec:"lp" json:"lp"`
	Checkpoint0 string `codec:"checkpoint0" json:"checkpoint0"`
	Checkpoint1 string `codec:"checkpoint1" json:"checkpoint1"`
	Owed0       string `codec:"owed0" json:"owed0"`
	Owed1       string `codec:"owed1" json:"owed1"`
}

// Snapshot captures the pool's committed state. Holders are sorted by
// address so snapshots of identical state are byte-identical.
func (p *Pool) Snapshot() PoolSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := PoolSnapshot{
		Token0:      p.token0.String(),
		Token1:      p.token1.String(),
		FeeRate:     p.feeRate,
		FeeAdmin:    p.feeAdmin.String(),
		Reserve0:    p.reserve0.String(),
		Reserve1:    p.reserve1.String(),
		TotalSupply: p.totalSupply.String(),
		AccFee0:     p.accFee0.String(),
		AccFee1:     p.accFee1.String(),
	}

	for addr, h := range p.holders {
		snap.Holders = append(snap.Holders, HolderSnapshot{
			Address:     addr.String(),
			LP:          h.lp.String(),
			Checkpoint0: h.checkpoint0.String(),
			Checkpoint1: h.checkpoint1.String(),
			Owed0:       h.owed0.String(),
			Owed1:       h.owed1.String(),
		})
	}
	sort.Slice(snap.Holders, func(i, j int) bool {
		return snap.Holders[i].Address < snap.Holders[j].Address
	})

	return snap
}

// SnapshotPool captures the pool for the pair together with its creation
// index, which only the registry knows.
func (f *Factory) SnapshotPool(tokenA, tokenB types.Address) (PoolSnapshot, error) {
	key := makePairKey(tokenA, tokenB)

	f.mu.RLock()
	pool := f.pools[key]
	index := 0
	for i, p := range f.list {
		if p == pool {
			index = i + 1
			break
		}
	}
	f.mu.RUnlock()

	if pool == nil {
		return PoolSnapshot{}, ErrPoolNotFound
	}
	snap := pool.Snapshot()
	snap.Index = index
	return snap, nil
}

// RestorePool registers a pool rebuilt from a snapshot. Unlike CreatePool it
// emits no event: restore replays committed history, it does not extend it.
// Callers restoring several pools must replay them in creation (Index)
// order; the registry indexes pools by insertion.
func (f *Factory) RestorePool(snap PoolSnapshot) (*Pool, error) {
	token0, err := types.ParseAddress(snap.Token0)
	if err != nil {
		return nil, fmt.Errorf("restore pool: %w", err)
	}
	token1, err := types.ParseAddress(snap.Token1)
	if err != nil {
		return nil, fmt.Errorf("restore pool: %w", err)
	}
	feeAdmin, err := types.ParseAddress(snap.FeeAdmin)
	if err != nil {
		return nil, fmt.Errorf("restore pool: %w", err)
	}
	if token0 == token1 {
		return nil, ErrIdenticalAddresses
	}
	if !token0.Less(token1) {
		return nil, fmt.Errorf("restore pool: pair %s/%s not canonical", snap.Token0, snap.Token1)
	}

	pool := newPool(token0, token1, snap.FeeRate, feeAdmin, f.tokens, f.bus, f.IsAuthorizedRouter)
	if pool.reserve0, err = parseAmount(snap.Reserve0); err != nil {
		return nil, err
	}
	if pool.reserve1, err = parseAmount(snap.Reserve1); err != nil {
		return nil, err
	}
	if pool.totalSupply, err = parseAmount(snap.TotalSupply); err != nil {
		return nil, err
	}
	if pool.accFee0, err = parseAmount(snap.AccFee0); err != nil {
		return nil, err
	}
	if pool.accFee1, err = parseAmount(snap.AccFee1); err != nil {
		return nil, err
	}

	for _, hs := range snap.Holders {
		addr, err := types.ParseAddress(hs.Address)
		if err != nil {
			return nil, fmt.Errorf("restore pool holder: %w", err)
		}
		h := newHolderState()
		if h.lp, err = parseAmount(hs.LP); err != nil {
			return nil, err
		}
		if h.checkpoint0, err = parseAmount(hs.Checkpoint0); err != nil {
			return nil, err
		}
		if h.checkpoint1, err = parseAmount(hs.Checkpoint1); err != nil {
			return nil, err
		}
		if h.owed0, err = parseAmount(hs.Owed0); err != nil {
			return nil, err
		}
		if h.owed1, err = parseAmount(hs.Owed1); err != nil {
			return nil, err
		}
		pool.holders[addr] = h
	}

	key := pairKey{token0: token0, token1: token1}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.pools[key]; exists {
		return nil, ErrPoolExists
	}
	f.pools[key] = pool
	f.list = append(f.list, pool)
	f.version++
	return pool, nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("restore pool: malformed amount %q", s)
	}
	return v, nil
}
