/*

This file contains the reward accrual and auto-compounding path. Rewards
are not separately custodied: the accrued balance is folded straight into
pooled principal with no external asset transfer. The pool grows by
bookkeeping alone: rewards are minted, not custodied, and only become
real asset claims when principal is later withdrawn.

*/

package vault

import (
	"github.com/optionsvault/ovm/internal/types"
	"github.com/optionsvault/ovm/internal/utils"
)

// ClaimAndCompound computes the time-weighted reward accrued since the
// user's last claim, applies the long-staking boost, and folds the whole
// reward balance into the pool. The reward balance is zero after every
// successful claim. The claim path is not gated by the paused flag.
func (s *Service) ClaimAndCompound(user types.Identity) (types.RewardsCompoundedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	position := s.positionFor(user, now)

	duration := now - position.LastStakedTimestamp
	if duration < 0 {
		return types.RewardsCompoundedEvent{}, ErrClockRegression
	}

	multiplier := uint64(1)
	if duration >= s.params.RewardBoostSeconds {
		multiplier = s.params.RewardBoostMultiplier
	}

	// Every checked computation happens before any assignment, so a failing
	// claim leaves both records untouched.
	accrued, err := utils.MulThenUint64(multiplier, s.vault.RewardRate, uint64(duration))
	if err != nil {
		return types.RewardsCompoundedEvent{}, ErrArithmeticOverflow
	}
	compounded, err := utils.AddUint64(position.RewardBalance, accrued)
	if err != nil {
		return types.RewardsCompoundedEvent{}, ErrArithmeticOverflow
	}
	newTotal, err := utils.AddUint64(s.vault.TotalDeposits, compounded)
	if err != nil {
		return types.RewardsCompoundedEvent{}, ErrArithmeticOverflow
	}

	s.vault.TotalDeposits = newTotal
	position.RewardBalance = 0
	position.LastStakedTimestamp = now
	s.persistVault()
	s.persistPosition(*position)

	event := types.RewardsCompoundedEvent{
		User:       user,
		Accrued:    accrued,
		Compounded: compounded,
	}
	s.events.Emit(event)

	serviceLogger.Info().
		Str("user", string(user)).
		Uint64("accrued", accrued).
		Uint64("compounded", compounded).
		Uint64("total_deposits", newTotal).
		Msg("Rewards claimed and compounded")
	return event, nil
}
