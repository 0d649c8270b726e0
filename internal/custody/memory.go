/*

This file contains the in-process holding-account ledger used by tests and
simulation mode. Balances live in a map behind a single lock; a transfer
debits and credits under that lock so it is atomic and all-or-nothing, the
same contract the live implementation gives.

*/

package custody

import (
	"context"
	"errors"
	"sync"

	"github.com/optionsvault/ovm/internal/types"
)

// Error definitions shared by the ledger implementations.
var (
	ErrInsufficientAccountBalance = errors.New("holding account balance is insufficient")
	ErrAccountBalanceOverflow     = errors.New("holding account balance overflow")
)

// MemoryLedger is an in-memory AssetTransferPort.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[types.AccountRef]uint64

	// failNext, when set, fails the next transfer with this error and
	// clears itself. Used by tests to exercise rollback paths.
	failNext error

	// failureHook, when set, is consulted before every transfer and can
	// fail selected legs (for example the fee leg of a withdrawal).
	failureHook func(from, to types.AccountRef, amount uint64) error
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[types.AccountRef]uint64)}
}

// Credit funds an account directly, bypassing transfer semantics. Test and
// simulation setup only.
func (l *MemoryLedger) Credit(account types.AccountRef, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Balance returns the current balance of an account.
func (l *MemoryLedger) Balance(account types.AccountRef) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// FailNextTransfer makes the next Transfer call fail with err.
func (l *MemoryLedger) FailNextTransfer(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = err
}

// SetFailureHook installs a per-leg failure predicate for tests.
func (l *MemoryLedger) SetFailureHook(hook func(from, to types.AccountRef, amount uint64) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failureHook = hook
}

// Transfer moves amount between holding accounts. The authority parameter
// is carried for the port contract; authorization is the caller's concern
// in this implementation.
func (l *MemoryLedger) Transfer(_ context.Context, from, to types.AccountRef, _ types.Identity, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return err
	}
	if l.failureHook != nil {
		if err := l.failureHook(from, to, amount); err != nil {
			return err
		}
	}

	if l.balances[from] < amount {
		return ErrInsufficientAccountBalance
	}
	if l.balances[to]+amount < l.balances[to] {
		return ErrAccountBalanceOverflow
	}

	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
