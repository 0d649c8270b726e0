/*

This file contains the balance-mutating accounting operations: deposit,
fee-deducted withdrawal, emergency withdrawal and borrow authorization.

Principal is pooled, not tracked per depositor. The ledger keeps no
per-user record of principal and withdrawal authorization is against the
aggregate pool only; that simplification is preserved here deliberately.

*/

package vault

import (
	"context"
	"errors"

	"github.com/optionsvault/ovm/internal/types"
	"github.com/optionsvault/ovm/internal/utils"
)

// Deposit moves amount from the user's holding account into the vault's and
// adds it to the pool. Rejected while the vault is paused. The pool update
// is checked; an overflowing deposit fails before any funds move.
func (s *Service) Deposit(ctx context.Context, user types.Identity, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vault.Paused {
		return ErrVaultPaused
	}

	newTotal, err := utils.AddUint64(s.vault.TotalDeposits, amount)
	if err != nil {
		return ErrArithmeticOverflow
	}

	if err := s.transfer.Transfer(ctx, types.UserHoldingAccount(user), s.vaultAccount, user, amount); err != nil {
		return errors.Join(ErrTransferFailed, err)
	}

	s.vault.TotalDeposits = newTotal
	s.persistVault()
	s.events.Emit(types.DepositEvent{User: user, Amount: amount})

	serviceLogger.Info().
		Str("user", string(user)).
		Uint64("amount", amount).
		Uint64("total_deposits", s.vault.TotalDeposits).
		Msg("Deposit applied")
	return nil
}

// Withdraw removes amount from the pool, paying the user net of the
// withdrawal fee and routing the fee to the fee collector. The full pre-fee
// amount leaves the pool: net goes to the user, fee to the collector, and
// both legs must succeed before the pool is decremented. If the fee leg
// fails after the net leg settled, the net leg is reversed with a
// compensating transfer so no state changes.
func (s *Service) Withdraw(ctx context.Context, user types.Identity, amount uint64) (net, fee uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vault.Paused {
		return 0, 0, ErrVaultPaused
	}
	if amount > s.vault.TotalDeposits {
		return 0, 0, ErrInsufficientFunds
	}

	gross, err := utils.MulUint64(amount, s.params.FeePercentage)
	if err != nil {
		return 0, 0, ErrArithmeticOverflow
	}
	fee = gross / 100
	net = amount - fee

	userAccount := types.UserHoldingAccount(user)
	if err := s.transfer.Transfer(ctx, s.vaultAccount, userAccount, s.vault.Authority, net); err != nil {
		return 0, 0, errors.Join(ErrTransferFailed, err)
	}
	if err := s.transfer.Transfer(ctx, s.vaultAccount, s.feeAccount, s.vault.Authority, fee); err != nil {
		// Reverse the settled net leg so the whole withdrawal rolls back.
		if revErr := s.transfer.Transfer(ctx, userAccount, s.vaultAccount, s.vault.Authority, net); revErr != nil {
			serviceLogger.Error().Err(revErr).
				Str("user", string(user)).
				Uint64("net", net).
				Msg("Failed to reverse net leg after fee leg failure; manual reconciliation required")
		}
		return 0, 0, errors.Join(ErrTransferFailed, err)
	}

	s.vault.TotalDeposits -= amount
	s.persistVault()
	s.events.Emit(types.WithdrawEvent{User: user, Amount: net, Fee: fee})

	serviceLogger.Info().
		Str("user", string(user)).
		Uint64("amount", net).
		Uint64("fee", fee).
		Uint64("total_deposits", s.vault.TotalDeposits).
		Msg("Withdrawal applied")
	return net, fee, nil
}

// EmergencyWithdraw pays out the full amount with no fee. It deliberately
// does not check the paused flag: the escape hatch stays open under pause
// as a depositor exit valve.
func (s *Service) EmergencyWithdraw(ctx context.Context, user types.Identity, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount > s.vault.TotalDeposits {
		return ErrInsufficientFunds
	}

	if err := s.transfer.Transfer(ctx, s.vaultAccount, types.UserHoldingAccount(user), s.vault.Authority, amount); err != nil {
		return errors.Join(ErrTransferFailed, err)
	}

	s.vault.TotalDeposits -= amount
	s.persistVault()

	serviceLogger.Warn().
		Str("user", string(user)).
		Uint64("amount", amount).
		Uint64("total_deposits", s.vault.TotalDeposits).
		Msg("Emergency withdrawal applied")
	return nil
}

// AuthorizeBorrow checks a borrow request against the leverage cap. It is
// read-only: no funds move and no state changes. Disbursement belongs to an
// external lending collaborator.
func (s *Service) AuthorizeBorrow(requested uint64) (maxBorrow uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vault.Paused {
		return 0, ErrVaultPaused
	}

	maxBorrow, err = utils.MulUint64(s.vault.TotalDeposits, s.params.LeverageCap)
	if err != nil {
		return 0, ErrArithmeticOverflow
	}
	if requested > maxBorrow {
		return 0, ErrExcessiveLeverage
	}

	serviceLogger.Debug().
		Uint64("requested", requested).
		Uint64("max_borrow", maxBorrow).
		Msg("Borrow authorized")
	return maxBorrow, nil
}
