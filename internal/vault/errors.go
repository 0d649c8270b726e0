package vault

import "errors"

// Error definitions for the ledger's failure taxonomy. Every operation is
// terminal on error: either all state touched by the call is updated and
// every external transfer succeeds, or nothing is.
var (
	ErrInsufficientFunds        = errors.New("insufficient funds in the vault for this withdrawal")
	ErrUnauthorized             = errors.New("caller is not the vault authority")
	ErrVaultPaused              = errors.New("the vault is paused")
	ErrExcessiveLeverage        = errors.New("requested leverage exceeds the maximum allowed")
	ErrStrategyExecutionTooSoon = errors.New("strategy execution too soon")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow on a vault counter")
	ErrClockRegression          = errors.New("clock regression observed while computing staking duration")
	ErrTransferFailed           = errors.New("external asset transfer failed")
)
