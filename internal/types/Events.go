/*

This file contains the domain events emitted by the vault service. Event
emission is fire-and-forget: a sink failure never rolls back the state
mutation that produced the event.

*/

package types

// StrategyBranch names which simulated options strategy ran.
type StrategyBranch string

const (
	StrategyCoveredCall    StrategyBranch = "covered_call"
	StrategyCashSecuredPut StrategyBranch = "cash_secured_put"
)

// DomainEvent is implemented by every event the vault service emits.
type DomainEvent interface {
	// EventType returns a stable identifier for the event kind, used as the
	// persistence discriminator and the message subject suffix.
	EventType() string
}

// DepositEvent records principal entering the pool.
type DepositEvent struct {
	User   Identity `json:"user"`
	Amount uint64   `json:"amount"`
}

func (DepositEvent) EventType() string { return "deposit" }

// WithdrawEvent records principal leaving the pool. Amount is the net paid
// to the user; Fee is the slice routed to the fee collector. The pool was
// reduced by Amount+Fee.
type WithdrawEvent struct {
	User   Identity `json:"user"`
	Amount uint64   `json:"amount"`
	Fee    uint64   `json:"fee"`
}

func (WithdrawEvent) EventType() string { return "withdraw" }

// StrategyExecutedEvent records one strategy run and its bookkeeping result.
type StrategyExecutedEvent struct {
	Strategy     StrategyBranch `json:"strategy"`
	MarketPrice  uint64         `json:"market_price"`
	ProfitOrLoss int64          `json:"profit_or_loss"`
	TotalTrades  uint64         `json:"total_trades"`
}

func (StrategyExecutedEvent) EventType() string { return "strategy_executed" }

// RewardsCompoundedEvent records a claim folding accrued rewards into the
// pool. Compounded is the full balance folded in, Accrued the portion newly
// earned by this claim.
type RewardsCompoundedEvent struct {
	User       Identity `json:"user"`
	Accrued    uint64   `json:"accrued"`
	Compounded uint64   `json:"compounded"`
}

func (RewardsCompoundedEvent) EventType() string { return "rewards_compounded" }
