/*

This file contains the time-gated strategy executor. The payouts are a
deterministic placeholder for a real pricing and execution integration; the
contract to preserve is the gating and the bookkeeping, not the numbers.

*/

package vault

import (
	"github.com/optionsvault/ovm/internal/types"
	"github.com/optionsvault/ovm/internal/utils"
)

// ExecuteStrategy runs one simulated options trade if the cooldown has
// elapsed. Market price above the threshold selects the covered-call
// branch, otherwise the cash-secured-put branch. On success the profit
// accumulator, trade counter and execution timestamp all advance; the
// timestamp only ever moves forward and only on success.
func (s *Service) ExecuteStrategy(marketPrice uint64) (types.StrategyExecutedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vault.Paused {
		return types.StrategyExecutedEvent{}, ErrVaultPaused
	}

	now := s.clock.Now()
	if now-s.vault.LastStrategyExecutionTime < s.params.CooldownSeconds {
		return types.StrategyExecutedEvent{}, ErrStrategyExecutionTooSoon
	}

	var branch types.StrategyBranch
	var outcome int64
	if marketPrice > s.vault.PriceThreshold {
		branch = types.StrategyCoveredCall
		outcome = s.params.CoveredCallPayout
	} else {
		branch = types.StrategyCashSecuredPut
		outcome = s.params.CashSecuredPutPayout
	}

	newProfit, err := utils.AddInt64(s.vault.TotalProfit, outcome)
	if err != nil {
		return types.StrategyExecutedEvent{}, ErrArithmeticOverflow
	}
	newTrades, err := utils.AddUint64(s.vault.TotalTrades, 1)
	if err != nil {
		return types.StrategyExecutedEvent{}, ErrArithmeticOverflow
	}

	s.vault.TotalProfit = newProfit
	s.vault.TotalTrades = newTrades
	s.vault.LastStrategyExecutionTime = now
	s.persistVault()

	event := types.StrategyExecutedEvent{
		Strategy:     branch,
		MarketPrice:  marketPrice,
		ProfitOrLoss: outcome,
		TotalTrades:  newTrades,
	}
	s.events.Emit(event)

	serviceLogger.Info().
		Str("strategy", string(branch)).
		Uint64("market_price", marketPrice).
		Int64("profit_or_loss", outcome).
		Uint64("total_trades", newTrades).
		Msg("Strategy executed")
	return event, nil
}
