/*

This file contains the dry-run scenario harness. When the manager is not
explicitly configured for live mode, main runs this scripted sequence over
an in-memory custody ledger and a scripted clock instead of touching real
holding accounts. It exercises every ledger operation end to end and prints
a report, which makes it a cheap smoke check for a fresh deployment.

*/

package simulations

import (
	"context"
	"fmt"

	"github.com/optionsvault/ovm/internal/config"
	"github.com/optionsvault/ovm/internal/custody"
	"github.com/optionsvault/ovm/internal/logger"
	"github.com/optionsvault/ovm/internal/types"
	"github.com/optionsvault/ovm/internal/vault"
)

var simLogger = logger.GetForComponent("simulation")

// scriptClock is a manually advanced epoch-seconds clock.
type scriptClock struct {
	now int64
}

func (c *scriptClock) Now() int64 { return c.now }

func (c *scriptClock) advance(seconds int64) { c.now += seconds }

// Report summarizes a completed dry-run scenario.
type Report struct {
	Deposited         uint64 `json:"deposited"`
	WithdrawnNet      uint64 `json:"withdrawn_net"`
	WithdrawalFee     uint64 `json:"withdrawal_fee"`
	StrategyRuns      uint64 `json:"strategy_runs"`
	TotalProfit       int64  `json:"total_profit"`
	RewardsCompounded uint64 `json:"rewards_compounded"`
	FinalPool         uint64 `json:"final_pool"`
}

// RunScenario drives one depositor through the full operation surface:
// deposit, fee-adjusted withdrawal, both strategy branches across the
// cooldown, a boosted reward claim, and a pause/emergency-withdraw/unpause
// round trip. All numbers are deterministic so the output is comparable
// between runs.
func RunScenario(ctx context.Context) (Report, error) {
	const (
		depositor      = types.Identity("sim-user")
		authority      = types.Identity("sim-admin")
		initialFunding = 1_000_000
		depositAmount  = 100_000
		withdrawAmount = 40_000
		priceThreshold = 50_000
		rewardRate     = 10
	)

	ledger := custody.NewMemoryLedger()
	ledger.Credit(types.UserHoldingAccount(depositor), initialFunding)

	clock := &scriptClock{now: 1_700_000_000}

	service, err := vault.NewService(vault.Config{
		Vault:        vault.InitializeVault(1, authority, rewardRate, priceThreshold),
		Params:       config.DefaultVaultParameters,
		Transfer:     ledger,
		Clock:        clock,
		Events:       logEmitter{},
		VaultAccount: types.AccountRef("sim/vault"),
		FeeAccount:   types.AccountRef("sim/fees"),
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to assemble simulation service: %w", err)
	}

	var report Report

	if err := service.Deposit(ctx, depositor, depositAmount); err != nil {
		return report, fmt.Errorf("deposit failed: %w", err)
	}
	report.Deposited = depositAmount

	net, fee, err := service.Withdraw(ctx, depositor, withdrawAmount)
	if err != nil {
		return report, fmt.Errorf("withdraw failed: %w", err)
	}
	report.WithdrawnNet = net
	report.WithdrawalFee = fee

	// One run on each side of the price threshold, a cooldown apart.
	if _, err := service.ExecuteStrategy(priceThreshold + 1); err != nil {
		return report, fmt.Errorf("covered call run failed: %w", err)
	}
	clock.advance(config.DefaultVaultParameters.CooldownSeconds)
	if _, err := service.ExecuteStrategy(priceThreshold); err != nil {
		return report, fmt.Errorf("cash secured put run failed: %w", err)
	}

	// Establish the staking record, then hold past the boost horizon.
	if _, err := service.ClaimAndCompound(depositor); err != nil {
		return report, fmt.Errorf("initial claim failed: %w", err)
	}
	clock.advance(config.DefaultVaultParameters.RewardBoostSeconds)
	claim, err := service.ClaimAndCompound(depositor)
	if err != nil {
		return report, fmt.Errorf("boosted claim failed: %w", err)
	}
	report.RewardsCompounded = claim.Compounded

	// Pause gate round trip: deposits blocked, emergency exit open.
	if err := service.Pause(authority); err != nil {
		return report, fmt.Errorf("pause failed: %w", err)
	}
	if err := service.Deposit(ctx, depositor, 1); err == nil {
		return report, fmt.Errorf("deposit unexpectedly succeeded while paused")
	}
	if err := service.EmergencyWithdraw(ctx, depositor, 10_000); err != nil {
		return report, fmt.Errorf("emergency withdraw failed: %w", err)
	}
	if err := service.Unpause(authority); err != nil {
		return report, fmt.Errorf("unpause failed: %w", err)
	}

	snapshot := service.Snapshot()
	report.StrategyRuns = snapshot.Vault.TotalTrades
	report.TotalProfit = snapshot.Vault.TotalProfit
	report.FinalPool = snapshot.Vault.TotalDeposits

	if snapshot.Vault.TotalDeposits != ledger.Balance(types.AccountRef("sim/vault"))+report.RewardsCompounded {
		simLogger.Warn().
			Uint64("pool", snapshot.Vault.TotalDeposits).
			Uint64("custodied", ledger.Balance(types.AccountRef("sim/vault"))).
			Msg("Pool diverged from custodied balance beyond compounded rewards")
	}

	simLogger.Info().
		Uint64("deposited", report.Deposited).
		Uint64("withdrawn_net", report.WithdrawnNet).
		Uint64("withdrawal_fee", report.WithdrawalFee).
		Uint64("strategy_runs", report.StrategyRuns).
		Int64("total_profit", report.TotalProfit).
		Uint64("rewards_compounded", report.RewardsCompounded).
		Uint64("final_pool", report.FinalPool).
		Msg("Simulation scenario complete")

	return report, nil
}

// logEmitter routes simulation events straight to the component logger.
type logEmitter struct{}

func (logEmitter) Emit(event types.DomainEvent) {
	simLogger.Debug().Str("event_type", event.EventType()).Interface("event", event).Msg("Event")
}
