// Package events defines the engine's observable event values and the
// synchronous bus that fans them out to read-only consumers (the websocket
// publisher, the storage checkpointer, indexers). Events carry the literal
// values of the mutation that produced them and are fired after the mutation
// has committed, outside the transactional boundary.
package events

import (
	"math/big"

	"github.com/kerlouan/goswapd/internal/core/types"
)

// Stream names group events for subscription purposes.
const (
	StreamPools     = "pools"
	StreamSwaps     = "swaps"
	StreamLiquidity = "liquidity"
	StreamFees      = "fees"
	StreamRoutes    = "routes"
	StreamDeals     = "deals"
)

// Event is any observable state-change notification emitted by the engine.
type Event interface {
	// Kind returns the event name as consumers see it.
	Kind() string
	// Stream returns the subscription stream the event belongs to.
	Stream() string
}

// AddedLiquidity is emitted after a successful liquidity deposit.
type AddedLiquidity struct {
	Token0   types.Address `json:"token0"`
	Token1   types.Address `json:"token1"`
	Provider types.Address `json:"provider"`
	Amount0  *big.Int      `json:"amount0"`
	Amount1  *big.Int      `json:"amount1"`
	LPMinted *big.Int      `json:"lp_minted"`
}

func (AddedLiquidity) Kind() string   { return "AddedLiquidity" }
func (AddedLiquidity) Stream() string { return StreamLiquidity }

// WithdrawnLiquidity is emitted after a successful LP burn.
type WithdrawnLiquidity struct {
	Token0   types.Address `json:"token0"`
	Token1   types.Address `json:"token1"`
	Provider types.Address `json:"provider"`
	LPBurned *big.Int      `json:"lp_burned"`
	Amount0  *big.Int      `json:"amount0"`
	Amount1  *big.Int      `json:"amount1"`
}

func (WithdrawnLiquidity) Kind() string   { return "WithdrawnLiquidity" }
func (WithdrawnLiquidity) Stream() string { return StreamLiquidity }

// Swapped is emitted after every executed swap leg with the exact gross input
// and net output amounts.
type Swapped struct {
	Token0    types.Address `json:"token0"`
	Token1    types.Address `json:"token1"`
	Trader    types.Address `json:"trader"`
	TokenIn   types.Address `json:"token_in"`
	AmountIn  *big.Int      `json:"amount_in"`
	TokenOut  types.Address `json:"token_out"`
	AmountOut *big.Int      `json:"amount_out"`
	Fee       *big.Int      `json:"fee"`
}

func (Swapped) Kind() string   { return "Swapped" }
func (Swapped) Stream() string { return StreamSwaps }

// FeeRateUpdated is emitted when a pool's fee rate changes.
type FeeRateUpdated struct {
	Token0 types.Address `json:"token0"`
	Token1 types.Address `json:"token1"`
	OldBps uint16        `json:"old_bps"`
	NewBps uint16        `json:"new_bps"`
}

func (FeeRateUpdated) Kind() string   { return "FeeRateUpdated" }
func (FeeRateUpdated) Stream() string { return StreamFees }

// FeeAdminUpdated is emitted when fee authority is transferred.
type FeeAdminUpdated struct {
	Token0   types.Address `json:"token0"`
	Token1   types.Address `json:"token1"`
	OldAdmin types.Address `json:"old_admin"`
	NewAdmin types.Address `json:"new_admin"`
}

func (FeeAdminUpdated) Kind() string   { return "FeeAdminUpdated" }
func (FeeAdminUpdated) Stream() string { return StreamFees }

// FeesClaimed is emitted when a holder collects accrued swap fees.
type FeesClaimed struct {
	Token0 types.Address `json:"token0"`
	Token1 types.Address `json:"token1"`
	Holder types.Address `json:"holder"`
	Fee0   *big.Int      `json:"fee0"`
	Fee1   *big.Int      `json:"fee1"`
}

func (FeesClaimed) Kind() string   { return "FeesClaimed" }
func (FeesClaimed) Stream() string { return StreamFees }

// PoolCreated is emitted when the factory registers a new pool. Index is
// 1-based creation order.
type PoolCreated struct {
	Token0  types.Address `json:"token0"`
	Token1  types.Address `json:"token1"`
	Index   int           `json:"index"`
	FeeRate uint16        `json:"fee_rate"`
}

func (PoolCreated) Kind() string   { return "PoolCreated" }
func (PoolCreated) Stream() string { return StreamPools }

// BestRouteFound is emitted with the winning path before a best-route swap
// executes.
type BestRouteFound struct {
	Path        []types.Address `json:"path"`
	AmountIn    *big.Int        `json:"amount_in"`
	ExpectedOut *big.Int        `json:"expected_out"`
}

func (BestRouteFound) Kind() string   { return "BestRouteFound" }
func (BestRouteFound) Stream() string { return StreamRoutes }

// DealCreated is emitted when escrow custody takes a buyer's funds.
type DealCreated struct {
	DealID    uint64        `json:"deal_id"`
	Buyer     types.Address `json:"buyer"`
	Seller    types.Address `json:"seller"`
	Token     types.Address `json:"token"`
	Amount    *big.Int      `json:"amount"`
	ProductID uint64        `json:"product_id"`
}

func (DealCreated) Kind() string   { return "DealCreated" }
func (DealCreated) Stream() string { return StreamDeals }

// DealReleased is emitted when escrowed funds reach the seller.
type DealReleased struct {
	DealID uint64        `json:"deal_id"`
	Seller types.Address `json:"seller"`
	Token  types.Address `json:"token"`
	Amount *big.Int      `json:"amount"`
}

func (DealReleased) Kind() string   { return "DealReleased" }
func (DealReleased) Stream() string { return StreamDeals }
