/*

This file contains the authority-gated administrative operations. Each one
is a direct field assignment behind a single capability check; admin
operations are never blocked by the paused flag.

*/

package vault

import "github.com/optionsvault/ovm/internal/types"

// isAuthorized reports whether the caller holds the vault's admin authority.
func isAuthorized(vault *types.Vault, caller types.Identity) bool {
	return caller == vault.Authority
}

// SetRewardRate updates the reward accrual rate.
func (s *Service) SetRewardRate(caller types.Identity, newRate uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isAuthorized(s.vault, caller) {
		return ErrUnauthorized
	}

	s.vault.RewardRate = newRate
	s.persistVault()
	serviceLogger.Info().Str("caller", string(caller)).Uint64("reward_rate", newRate).Msg("Reward rate updated")
	return nil
}

// SetStrategyThreshold updates the market-price boundary between the two
// strategy branches.
func (s *Service) SetStrategyThreshold(caller types.Identity, newThreshold uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isAuthorized(s.vault, caller) {
		return ErrUnauthorized
	}

	s.vault.PriceThreshold = newThreshold
	s.persistVault()
	serviceLogger.Info().Str("caller", string(caller)).Uint64("price_threshold", newThreshold).Msg("Strategy threshold updated")
	return nil
}

// Pause blocks deposits, withdrawals, strategy execution and borrow
// authorization. Emergency withdrawal and admin operations stay open.
func (s *Service) Pause(caller types.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isAuthorized(s.vault, caller) {
		return ErrUnauthorized
	}

	s.vault.Paused = true
	s.persistVault()
	serviceLogger.Warn().Str("caller", string(caller)).Msg("Vault paused")
	return nil
}

// Unpause reopens the gated operations.
func (s *Service) Unpause(caller types.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isAuthorized(s.vault, caller) {
		return ErrUnauthorized
	}

	s.vault.Paused = false
	s.persistVault()
	serviceLogger.Info().Str("caller", string(caller)).Msg("Vault unpaused")
	return nil
}
