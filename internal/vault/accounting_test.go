package vault

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optionsvault/ovm/internal/types"
)

func TestDeposit(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)

	err := f.service.Deposit(context.Background(), "alice", 100)
	require.NoError(t, err)

	require.Equal(t, uint64(100), f.vault.TotalDeposits)
	require.Equal(t, uint64(900), f.ledger.Balance(types.UserHoldingAccount("alice")))
	require.Equal(t, uint64(100), f.ledger.Balance(testVaultAccount))
	require.Equal(t, types.DepositEvent{User: "alice", Amount: 100}, f.sink.last())
}

func TestDeposit_Paused(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	require.NoError(t, f.service.Pause(testAuthority))

	err := f.service.Deposit(context.Background(), "alice", 100)
	require.ErrorIs(t, err, ErrVaultPaused)
	require.Equal(t, uint64(0), f.vault.TotalDeposits)
}

func TestDeposit_TransferFailure(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	f.ledger.FailNextTransfer(errors.New("custody unavailable"))

	err := f.service.Deposit(context.Background(), "alice", 100)
	require.ErrorIs(t, err, ErrTransferFailed)

	// Nothing moved, nothing accounted.
	require.Equal(t, uint64(0), f.vault.TotalDeposits)
	require.Equal(t, uint64(1_000), f.ledger.Balance(types.UserHoldingAccount("alice")))
	require.Empty(t, f.sink.all())
}

func TestDeposit_Overflow(t *testing.T) {
	full := InitializeVault(1, testAuthority, 10, 50_000)
	full.TotalDeposits = math.MaxUint64
	f := newFixture(t, withVault(full))
	f.fund("alice", 10)

	err := f.service.Deposit(context.Background(), "alice", 1)
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	// The overflow is detected before any funds move.
	require.Equal(t, uint64(10), f.ledger.Balance(types.UserHoldingAccount("alice")))
	require.Equal(t, uint64(math.MaxUint64), f.vault.TotalDeposits)
}

func TestWithdraw_FeeMath(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	require.NoError(t, f.service.Deposit(context.Background(), "alice", 100))

	net, fee, err := f.service.Withdraw(context.Background(), "alice", 40)
	require.NoError(t, err)
	require.Equal(t, uint64(38), net)
	require.Equal(t, uint64(2), fee)

	// The full pre-fee amount left the pool; the fee went to the collector.
	require.Equal(t, uint64(60), f.vault.TotalDeposits)
	require.Equal(t, uint64(938), f.ledger.Balance(types.UserHoldingAccount("alice")))
	require.Equal(t, uint64(2), f.ledger.Balance(testFeeAccount))
	require.Equal(t, uint64(60), f.ledger.Balance(testVaultAccount))
	require.Equal(t, types.WithdrawEvent{User: "alice", Amount: 38, Fee: 2}, f.sink.last())

	// Overdrawing fails and leaves everything untouched.
	_, _, err = f.service.Withdraw(context.Background(), "alice", 1_000)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, uint64(60), f.vault.TotalDeposits)
}

func TestWithdraw_Paused(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	require.NoError(t, f.service.Deposit(context.Background(), "alice", 100))
	require.NoError(t, f.service.Pause(testAuthority))

	_, _, err := f.service.Withdraw(context.Background(), "alice", 40)
	require.ErrorIs(t, err, ErrVaultPaused)
}

func TestWithdraw_FeeLegFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	require.NoError(t, f.service.Deposit(context.Background(), "alice", 100))

	failFeeLeg := errors.New("fee account unavailable")
	f.ledger.SetFailureHook(func(from, to types.AccountRef, amount uint64) error {
		if to == testFeeAccount {
			return failFeeLeg
		}
		return nil
	})

	_, _, err := f.service.Withdraw(context.Background(), "alice", 40)
	require.ErrorIs(t, err, ErrTransferFailed)

	// The settled net leg was reversed and the pool is untouched.
	require.Equal(t, uint64(100), f.vault.TotalDeposits)
	require.Equal(t, uint64(900), f.ledger.Balance(types.UserHoldingAccount("alice")))
	require.Equal(t, uint64(100), f.ledger.Balance(testVaultAccount))
	require.Equal(t, uint64(0), f.ledger.Balance(testFeeAccount))
}

func TestEmergencyWithdraw(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	require.NoError(t, f.service.Deposit(context.Background(), "alice", 100))

	// Emergency withdrawal stays open while the vault is paused. This
	// asymmetry is deliberate; confirm with stakeholders before
	// aligning it with the gated operations.
	require.NoError(t, f.service.Pause(testAuthority))

	err := f.service.EmergencyWithdraw(context.Background(), "alice", 100)
	require.NoError(t, err)

	// Full amount, zero fee.
	require.Equal(t, uint64(0), f.vault.TotalDeposits)
	require.Equal(t, uint64(1_000), f.ledger.Balance(types.UserHoldingAccount("alice")))
	require.Equal(t, uint64(0), f.ledger.Balance(testFeeAccount))
}

func TestEmergencyWithdraw_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	require.NoError(t, f.service.Deposit(context.Background(), "alice", 100))

	err := f.service.EmergencyWithdraw(context.Background(), "alice", 101)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, uint64(100), f.vault.TotalDeposits)
}

func TestAuthorizeBorrow(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	require.NoError(t, f.service.Deposit(context.Background(), "alice", 100))

	// Exactly at the cap succeeds.
	maxBorrow, err := f.service.AuthorizeBorrow(300)
	require.NoError(t, err)
	require.Equal(t, uint64(300), maxBorrow)

	// One past the cap fails.
	_, err = f.service.AuthorizeBorrow(301)
	require.ErrorIs(t, err, ErrExcessiveLeverage)

	// Authorization is read-only.
	require.Equal(t, uint64(100), f.vault.TotalDeposits)
	require.Equal(t, uint64(100), f.ledger.Balance(testVaultAccount))
}

func TestAuthorizeBorrow_Paused(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.Pause(testAuthority))

	_, err := f.service.AuthorizeBorrow(0)
	require.ErrorIs(t, err, ErrVaultPaused)
}

func TestConservation(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 10_000)
	f.fund("bob", 10_000)
	ctx := context.Background()

	deposits := []struct {
		user   types.Identity
		amount uint64
	}{
		{"alice", 500}, {"bob", 1_200}, {"alice", 300},
	}
	var depositTotal uint64
	for _, d := range deposits {
		require.NoError(t, f.service.Deposit(ctx, d.user, d.amount))
		depositTotal += d.amount
	}

	withdrawals := []struct {
		user   types.Identity
		amount uint64
	}{
		{"bob", 200}, {"alice", 100},
	}
	var withdrawTotal uint64
	for _, w := range withdrawals {
		_, _, err := f.service.Withdraw(ctx, w.user, w.amount)
		require.NoError(t, err)
		withdrawTotal += w.amount
	}

	// The pool equals deposits minus full withdrawal amounts, fee included
	// in the deduction, and matches the custodied balance exactly.
	require.Equal(t, depositTotal-withdrawTotal, f.vault.TotalDeposits)
	require.Equal(t, f.vault.TotalDeposits, f.ledger.Balance(testVaultAccount))
}
