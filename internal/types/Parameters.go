package types

// VaultParameters collects the tunable constants of the ledger. The source
// system compiled these in; they are configuration here so an operator can
// change them without re-deriving the formulas. A versioned copy of the
// active set is persisted in the database.
type VaultParameters struct {
	// FeePercentage is the withdrawal fee in whole percent (floor division).
	FeePercentage uint64 `json:"fee_percentage"`

	// LeverageCap is the maximum borrow multiple of pooled principal.
	LeverageCap uint64 `json:"leverage_cap"`

	// CoveredCallPayout is the simulated outcome of the covered-call branch.
	CoveredCallPayout int64 `json:"covered_call_payout"`

	// CashSecuredPutPayout is the simulated outcome of the cash-secured-put branch.
	CashSecuredPutPayout int64 `json:"cash_secured_put_payout"`

	// CooldownSeconds is the minimum elapsed time between strategy executions.
	CooldownSeconds int64 `json:"cooldown_seconds"`

	// RewardBoostSeconds is the staking duration after which the boost
	// multiplier applies.
	RewardBoostSeconds int64 `json:"reward_boost_seconds"`

	// RewardBoostMultiplier is the multiplier applied once the boost
	// duration is reached.
	RewardBoostMultiplier uint64 `json:"reward_boost_multiplier"`
}
