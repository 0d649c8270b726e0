/*

This file contains the ledger entities: the pooled Vault record and the
per-depositor UserPosition record. These are pure data; all mutation goes
through the vault service so the invariants hold after every operation.

*/

package types

import "time"

// Identity is the principal identifier for a caller (depositor or admin).
// Authentication of an Identity is external; the ledger only compares them.
type Identity string

// AccountRef identifies a holding account at the external custody layer.
type AccountRef string

// UserHoldingAccount derives the custody holding account for a depositor.
func UserHoldingAccount(user Identity) AccountRef {
	return AccountRef("user/" + string(user))
}

// Vault is the pooled-custody record. One per deployment instance.
type Vault struct {
	VaultID uint64 `json:"vault_id"`

	// TotalDeposits is the sum of all currently pooled principal. It must
	// mirror the externally custodied holding-account balance, modulo
	// in-flight operations, and can never go negative.
	TotalDeposits uint64 `json:"total_deposits"`

	// RewardRate is the reward units accrued per unit time (admin-tunable).
	RewardRate uint64 `json:"reward_rate"`

	// PriceThreshold is the market-price boundary selecting the strategy branch.
	PriceThreshold uint64 `json:"price_threshold"`

	// Authority is the sole principal permitted to perform admin operations.
	Authority Identity `json:"authority"`

	// Paused blocks deposit, withdraw, strategy execution and borrow
	// authorization. Emergency withdrawal and admin operations stay open.
	Paused bool `json:"paused"`

	// TotalProfit is the cumulative signed P&L from strategy execution.
	TotalProfit int64 `json:"total_profit"`

	// TotalTrades counts successful strategy executions. Monotonic.
	TotalTrades uint64 `json:"total_trades"`

	// LastStrategyExecutionTime is the epoch-seconds timestamp of the most
	// recent strategy run. Zero means never executed.
	LastStrategyExecutionTime int64 `json:"last_strategy_execution_time"`
}

// UserPosition is the per-depositor staking record. Created lazily before a
// user's first reward-bearing interaction; never destroyed by the ledger.
type UserPosition struct {
	User Identity `json:"user"`

	// RewardBalance holds accrued, not-yet-compounded reward units. It is
	// zero immediately after every successful claim.
	RewardBalance uint64 `json:"reward_balance"`

	// LastStakedTimestamp is the epoch-seconds time rewards were last
	// computed for this user.
	LastStakedTimestamp int64 `json:"last_staked_timestamp"`
}

// VaultSnapshot is a read-only copy of the vault state plus bookkeeping
// metadata, used by the web layer and the persistence layer.
type VaultSnapshot struct {
	Vault     Vault     `json:"vault"`
	Positions int       `json:"positions"`
	UpdatedAt time.Time `json:"updated_at"`
}
