/*

This file contains the default tunable constants for the vault ledger.

They are configuration rather than compiled-in constants so an operator
can adjust them without touching the accounting formulas; a versioned copy
of the active set is kept in the database.

*/

package config

import (
	"github.com/optionsvault/ovm/internal/types"
)

// DefaultVaultParameters provides the baseline constants for the vault's
// accounting formulas. These values are used if no active parameters are
// found in the database during initialization.
var DefaultVaultParameters = types.VaultParameters{
	FeePercentage: 5, // 5% withdrawal fee, floor division.
	// The fee is a transfer destination, not a forgiven balance: the full
	// pre-fee amount leaves the pool on every withdrawal.

	LeverageCap: 3, // Authorize borrowing up to 3x pooled principal.

	CoveredCallPayout:    1000, // Simulated outcome when price exceeds the threshold.
	CashSecuredPutPayout: -500, // Simulated outcome at or below the threshold.
	// Both payouts are placeholders for a real pricing integration; the
	// gating and bookkeeping around them are the contract.

	CooldownSeconds: 3600, // At most one strategy execution per hour.

	RewardBoostSeconds:    30 * 86400, // Boost kicks in after 30 days staked.
	RewardBoostMultiplier: 2,          // Double rewards once boosted.
}
