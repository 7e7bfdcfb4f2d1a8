package escrow

import (
	"fmt"
	"math/big"

	"github.com/kerlouan/goswapd/internal/core/types"
)

// DealSnapshot is one deal in storage-friendly form. The amount is a decimal
// string so the snapshot codec never has to understand big.Int.
type DealSnapshot struct {
	DealID    uint64 `codec:"deal_id" json:"deal_id"`
	Buyer     string `codec:"buyer" json:"buyer"`
	Seller    string `codec:"seller" json:"seller"`
	Token     string `codec:"token" json:"token"`
	Amount    string `codec:"amount" json:"amount"`
	ProductID uint64 `codec:"product_id" json:"product_id"`
	Released  bool   `codec:"released" json:"released"`
}

// Snapshot captures every deal in id order.
func (e *Escrow) Snapshot() []DealSnapshot {
	deals := e.Deals()
	out := make([]DealSnapshot, len(deals))
	for i, deal := range deals {
		out[i] = DealSnapshot{
			DealID:    deal.DealID,
			Buyer:     deal.Buyer.String(),
			Seller:    deal.Seller.String(),
			Token:     deal.Token.String(),
			Amount:    deal.Amount.String(),
			ProductID: deal.ProductID,
			Released:  deal.Released,
		}
	}
	return out
}

// SnapshotDeal captures a single deal.
func (e *Escrow) SnapshotDeal(dealID uint64) (DealSnapshot, error) {
	deal, err := e.Deal(dealID)
	if err != nil {
		return DealSnapshot{}, err
	}
	return DealSnapshot{
		DealID:    deal.DealID,
		Buyer:     deal.Buyer.String(),
		Seller:    deal.Seller.String(),
		Token:     deal.Token.String(),
		Amount:    deal.Amount.String(),
		ProductID: deal.ProductID,
		Released:  deal.Released,
	}, nil
}

// RestoreDeal reinstates a deal from a snapshot without touching the ledger
// or emitting events; funds for unreleased deals are assumed to already sit
// in custody. The id counter advances past every restored id.
func (e *Escrow) RestoreDeal(snap DealSnapshot) error {
	buyer, err := types.ParseAddress(snap.Buyer)
	if err != nil {
		return fmt.Errorf("deal %d buyer: %w", snap.DealID, err)
	}
	seller, err := types.ParseAddress(snap.Seller)
	if err != nil {
		return fmt.Errorf("deal %d seller: %w", snap.DealID, err)
	}
	token, err := types.ParseAddress(snap.Token)
	if err != nil {
		return fmt.Errorf("deal %d token: %w", snap.DealID, err)
	}
	amount, ok := new(big.Int).SetString(snap.Amount, 10)
	if !ok {
		return fmt.Errorf("deal %d amount %q: not a decimal integer", snap.DealID, snap.Amount)
	}
	if snap.DealID == 0 {
		return fmt.Errorf("deal id 0 is never issued")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.deals[snap.DealID]; exists {
		return fmt.Errorf("deal %d already present", snap.DealID)
	}
	e.deals[snap.DealID] = &Deal{
		DealID:    snap.DealID,
		Buyer:     buyer,
		Seller:    seller,
		Token:     token,
		Amount:    amount,
		ProductID: snap.ProductID,
		Released:  snap.Released,
	}
	if snap.DealID >= e.nextID {
		e.nextID = snap.DealID + 1
	}
	return nil
}
