package custody

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optionsvault/ovm/internal/types"
)

func TestMemoryLedger_Transfer(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Credit("user/alice", 100)

	err := ledger.Transfer(context.Background(), "user/alice", "vault/main", "alice", 60)
	require.NoError(t, err)
	require.Equal(t, uint64(40), ledger.Balance("user/alice"))
	require.Equal(t, uint64(60), ledger.Balance("vault/main"))
}

func TestMemoryLedger_InsufficientBalance(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Credit("user/alice", 10)

	err := ledger.Transfer(context.Background(), "user/alice", "vault/main", "alice", 11)
	require.ErrorIs(t, err, ErrInsufficientAccountBalance)

	// Neither side moved.
	require.Equal(t, uint64(10), ledger.Balance("user/alice"))
	require.Equal(t, uint64(0), ledger.Balance("vault/main"))
}

func TestMemoryLedger_ZeroTransfer(t *testing.T) {
	ledger := NewMemoryLedger()

	err := ledger.Transfer(context.Background(), "user/alice", "vault/main", "alice", 0)
	require.NoError(t, err)
}

func TestMemoryLedger_CreditOverflowGuard(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Credit("user/alice", 10)
	ledger.Credit("vault/main", math.MaxUint64)

	err := ledger.Transfer(context.Background(), "user/alice", "vault/main", "alice", 1)
	require.ErrorIs(t, err, ErrAccountBalanceOverflow)
}

func TestMemoryLedger_FailNextTransfer(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Credit("user/alice", 100)

	injected := errors.New("custody unavailable")
	ledger.FailNextTransfer(injected)

	err := ledger.Transfer(context.Background(), "user/alice", "vault/main", "alice", 50)
	require.ErrorIs(t, err, injected)
	require.Equal(t, uint64(100), ledger.Balance("user/alice"))

	// Only the next transfer fails.
	err = ledger.Transfer(context.Background(), "user/alice", "vault/main", "alice", 50)
	require.NoError(t, err)
}

func TestMemoryLedger_ConcurrentTransfers(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Credit("user/alice", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				err := ledger.Transfer(context.Background(), "user/alice", types.AccountRef("vault/main"), "alice", 1)
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(900), ledger.Balance("user/alice"))
	require.Equal(t, uint64(100), ledger.Balance("vault/main"))
}
