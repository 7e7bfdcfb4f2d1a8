// Package ledger defines the external token-ledger collaborator the exchange
// engine debits and credits through. The ledger is the only component that
// moves real token balances; the engine calls it as part of its own atomic
// state transitions, and any failure here aborts the enclosing operation.
package ledger

import (
	"errors"
	"math/big"

	"github.com/kerlouan/goswapd/internal/core/types"
)

var (
	// ErrInsufficientBalance is returned when an owner cannot fund a debit.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	// ErrInsufficientCustody is returned when a credit exceeds what the
	// engine holds in custody for that token. Seeing it means the engine's
	// bookkeeping and the ledger's disagree.
	ErrInsufficientCustody = errors.New("ledger: insufficient custody")
)

// TokenLedger supplies the transfer primitives backing every engine mutation.
//
// TransferIn moves amount of token from owner into engine custody.
// TransferOut moves amount of token from engine custody to recipient.
// AllowanceCheck verifies a TransferIn of the same arguments would succeed,
// without moving anything; callers use it to fail multi-leg operations before
// the first leg commits.
type TokenLedger interface {
	TransferIn(owner, token types.Address, amount *big.Int) error
	TransferOut(recipient, token types.Address, amount *big.Int) error
	AllowanceCheck(owner, token types.Address, amount *big.Int) error
}
