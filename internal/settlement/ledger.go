// ==============================================
// File: internal/settlement/ledger.go
// ==============================================
package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// ErrInsufficientFunds is returned when the source balance cannot cover
// the transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger is an in-memory payment backend: a plain balance map with
// atomic transfers. Used by tests and the simulator backend.
type Ledger struct {
	mu       sync.Mutex
	balances map[solana.PublicKey]uint64
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[solana.PublicKey]uint64)}
}

// Credit adds lamports to an account, creating it if needed.
func (l *Ledger) Credit(account solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += lamports
}

// BalanceOf returns the current balance of an account.
func (l *Ledger) BalanceOf(account solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Transfer moves lamports between accounts; debit and credit happen
// under one lock, so the move is all-or-nothing.
func (l *Ledger) Transfer(_ context.Context, from, to solana.PublicKey, lamports uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < lamports {
		return fmt.Errorf("%w: account %s has %d, needs %d",
			ErrInsufficientFunds, from, l.balances[from], lamports)
	}
	l.balances[from] -= lamports
	l.balances[to] += lamports
	return nil
}
