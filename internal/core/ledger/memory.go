package ledger

import (
	"math/big"
	"sync"

	"github.com/kerlouan/goswapd/internal/core/types"
)

// MemoryLedger is an in-process TokenLedger used by the standalone server and
// the test suites. Balances are keyed holder then token; engine custody is a
// per-token bucket outside any holder account.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[types.Address]map[types.Address]*big.Int
	custody  map[types.Address]*big.Int
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[types.Address]map[types.Address]*big.Int),
		custody:  make(map[types.Address]*big.Int),
	}
}

// Mint credits holder with amount of token out of thin air.
func (l *MemoryLedger) Mint(holder, token types.Address, amount *big.Int) {
	if !types.IsPositive(amount) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balanceRef(holder, token).Add(l.balanceRef(holder, token), amount)
}

// BalanceOf returns holder's balance of token.
func (l *MemoryLedger) BalanceOf(holder, token types.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return types.CloneAmount(l.balances[holder][token])
}

// CustodyOf returns the amount of token currently held for the engine.
func (l *MemoryLedger) CustodyOf(token types.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return types.CloneAmount(l.custody[token])
}

// TransferIn implements TokenLedger.
func (l *MemoryLedger) TransferIn(owner, token types.Address, amount *big.Int) error {
	if !types.IsPositive(amount) {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balanceRef(owner, token)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	l.custodyRef(token).Add(l.custodyRef(token), amount)
	return nil
}

// TransferOut implements TokenLedger.
func (l *MemoryLedger) TransferOut(recipient, token types.Address, amount *big.Int) error {
	if !types.IsPositive(amount) {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cust := l.custodyRef(token)
	if cust.Cmp(amount) < 0 {
		return ErrInsufficientCustody
	}
	cust.Sub(cust, amount)
	l.balanceRef(recipient, token).Add(l.balanceRef(recipient, token), amount)
	return nil
}

// AllowanceCheck implements TokenLedger.
func (l *MemoryLedger) AllowanceCheck(owner, token types.Address, amount *big.Int) error {
	if !types.IsPositive(amount) {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balanceRef(owner, token).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// balanceRef returns the mutable balance cell, allocating as needed.
// Callers must hold l.mu.
func (l *MemoryLedger) balanceRef(holder, token types.Address) *big.Int {
	tokens, ok := l.balances[holder]
	if !ok {
		tokens = make(map[types.Address]*big.Int)
		l.balances[holder] = tokens
	}
	bal, ok := tokens[token]
	if !ok {
		bal = new(big.Int)
		tokens[token] = bal
	}
	return bal
}

func (l *MemoryLedger) custodyRef(token types.Address) *big.Int {
	cust, ok := l.custody[token]
	if !ok {
		cust = new(big.Int)
		l.custody[token] = cust
	}
	return cust
}
