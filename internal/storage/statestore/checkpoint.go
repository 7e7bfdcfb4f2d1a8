package statestore

import (
	"log"
	"sort"

	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/kerlouan/goswapd/internal/core/escrow"
	"github.com/kerlouan/goswapd/internal/core/types"
	"github.com/kerlouan/goswapd/internal/events"
)

// Checkpointer persists the state touched by each committed operation. It
// listens on the event bus: events fire only after their mutation commits,
// so snapshotting the named pool or deal always captures post-state.
type Checkpointer struct {
	store   *Store
	factory *amm.Factory
	escrow  *escrow.Escrow
}

// NewCheckpointer wires a checkpointer over store. The escrow may be nil
// when the engine runs without the deal ledger.
func NewCheckpointer(store *Store, factory *amm.Factory, esc *escrow.Escrow) *Checkpointer {
	return &Checkpointer{store: store, factory: factory, escrow: esc}
}

// Attach subscribes the checkpointer to bus.
func (c *Checkpointer) Attach(bus *events.Bus) {
	bus.Subscribe(c.handle)
}

func (c *Checkpointer) handle(ev events.Event) {
	switch e := ev.(type) {
	case events.PoolCreated:
		c.savePool(e.Token0, e.Token1)
	case events.AddedLiquidity:
		c.savePool(e.Token0, e.Token1)
	case events.WithdrawnLiquidity:
		c.savePool(e.Token0, e.Token1)
	case events.Swapped:
		c.savePool(e.Token0, e.Token1)
	case events.FeeRateUpdated:
		c.savePool(e.Token0, e.Token1)
	case events.FeeAdminUpdated:
		c.savePool(e.Token0, e.Token1)
	case events.FeesClaimed:
		c.savePool(e.Token0, e.Token1)
	case events.DealCreated:
		c.saveDeal(e.DealID)
	case events.DealReleased:
		c.saveDeal(e.DealID)
	}
}

func (c *Checkpointer) savePool(token0, token1 types.Address) {
	snap, err := c.factory.SnapshotPool(token0, token1)
	if err != nil {
		return
	}
	if err := c.store.SavePool(snap); err != nil {
		log.Printf("statestore: checkpoint pool %s/%s: %v", token0, token1, err)
	}
}

func (c *Checkpointer) saveDeal(dealID uint64) {
	if c.escrow == nil {
		return
	}
	snap, err := c.escrow.SnapshotDeal(dealID)
	if err != nil {
		log.Printf("statestore: checkpoint deal %d: %v", dealID, err)
		return
	}
	if err := c.store.SaveDeal(snap); err != nil {
		log.Printf("statestore: checkpoint deal %d: %v", dealID, err)
	}
}

// Restore loads every stored snapshot into factory and esc. Used once at
// startup before the engine accepts operations.
func Restore(store *Store, factory *amm.Factory, esc *escrow.Escrow) error {
	pools, err := store.LoadPools()
	if err != nil {
		return err
	}
	// Snapshots come back in key order; replay them in creation order so
	// pool indexing matches the pre-restart registry.
	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].Index < pools[j].Index
	})
	for _, snap := range pools {
		if _, err := factory.RestorePool(snap); err != nil {
			return err
		}
	}

	if esc == nil {
		return nil
	}
	deals, err := store.LoadDeals()
	if err != nil {
		return err
	}
	for _, snap := range deals {
		if err := esc.RestoreDeal(snap); err != nil {
			return err
		}
	}
	return nil
}
