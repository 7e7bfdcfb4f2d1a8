// Package escrow keeps a ledger of buyer-to-seller deals. A deal holds the
// buyer's funds in engine custody until someone releases them to the seller;
// released deals are terminal.
package escrow

import (
	"errors"
	"math/big"
	"sync"

	"github.com/kerlouan/goswapd/internal/core/ledger"
	"github.com/kerlouan/goswapd/internal/core/types"
	"github.com/kerlouan/goswapd/internal/events"
)

var (
	// ErrInvalidSeller rejects a hold naming the zero address as seller.
	ErrInvalidSeller = errors.New("invalid seller")
	// ErrNonPositiveAmount rejects a hold of zero or negative funds.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrDealNotFound means the deal id was never issued.
	ErrDealNotFound = errors.New("DEAL_DOES_NOT_EXIST")
	// ErrAlreadyReleased means the deal already reached its terminal state.
	ErrAlreadyReleased = errors.New("already released")
)

// Deal is one buyer-to-seller hold. Released is the only state transition.
type Deal struct {
	DealID    uint64
	Buyer     types.Address
	Seller    types.Address
	Token     types.Address
	Amount    *big.Int
	ProductID uint64
	Released  bool
}

// Escrow issues monotonically increasing deal ids and tracks every deal ever
// created. Deals are never deleted; a released deal stays queryable.
type Escrow struct {
	mu     sync.RWMutex
	deals  map[uint64]*Deal
	nextID uint64

	tokens ledger.TokenLedger
	bus    *events.Bus
}

// New builds an empty escrow ledger over tokens.
func New(tokens ledger.TokenLedger, bus *events.Bus) *Escrow {
	return &Escrow{
		deals:  make(map[uint64]*Deal),
		nextID: 1,
		tokens: tokens,
		bus:    bus,
	}
}

// Hold debits amount of token from buyer into engine custody and opens a
// deal toward seller. Returns the fresh deal id.
func (e *Escrow) Hold(buyer, seller, token types.Address, amount *big.Int, productID uint64) (uint64, error) {
	if seller.IsZero() {
		return 0, ErrInvalidSeller
	}
	if !types.IsPositive(amount) {
		return 0, ErrNonPositiveAmount
	}

	e.mu.Lock()
	if err := e.tokens.TransferIn(buyer, token, amount); err != nil {
		e.mu.Unlock()
		return 0, err
	}
	deal := &Deal{
		DealID:    e.nextID,
		Buyer:     buyer,
		Seller:    seller,
		Token:     token,
		Amount:    types.CloneAmount(amount),
		ProductID: productID,
	}
	e.nextID++
	e.deals[deal.DealID] = deal
	e.mu.Unlock()

	e.bus.Emit(events.DealCreated{
		DealID:    deal.DealID,
		Buyer:     buyer,
		Seller:    seller,
		Token:     token,
		Amount:    types.CloneAmount(amount),
		ProductID: productID,
	})
	return deal.DealID, nil
}

// ReleaseToSeller moves a deal's funds from custody to its seller and marks
// the deal terminal. Any caller may release any deal.
func (e *Escrow) ReleaseToSeller(dealID uint64) error {
	e.mu.Lock()
	deal, ok := e.deals[dealID]
	if !ok {
		e.mu.Unlock()
		return ErrDealNotFound
	}
	if deal.Released {
		e.mu.Unlock()
		return ErrAlreadyReleased
	}
	if err := e.tokens.TransferOut(deal.Seller, deal.Token, deal.Amount); err != nil {
		e.mu.Unlock()
		return err
	}
	deal.Released = true
	seller, token := deal.Seller, deal.Token
	amount := types.CloneAmount(deal.Amount)
	e.mu.Unlock()

	e.bus.Emit(events.DealReleased{
		DealID: dealID,
		Seller: seller,
		Token:  token,
		Amount: amount,
	})
	return nil
}

// Deal returns a copy of the deal's current state.
func (e *Escrow) Deal(dealID uint64) (Deal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	deal, ok := e.deals[dealID]
	if !ok {
		return Deal{}, ErrDealNotFound
	}
	out := *deal
	out.Amount = types.CloneAmount(deal.Amount)
	return out, nil
}

// Deals returns every deal in id order.
func (e *Escrow) Deals() []Deal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Deal, 0, len(e.deals))
	for id := uint64(1); id < e.nextID; id++ {
		if deal, ok := e.deals[id]; ok {
			copied := *deal
			copied.Amount = types.CloneAmount(deal.Amount)
			out = append(out, copied)
		}
	}
	return out
}

// NextID is the id the next hold will receive.
func (e *Escrow) NextID() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nextID
}
