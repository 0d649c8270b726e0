/*

This file contains the collaborator contracts the vault service consumes.
Custody, time, event transport and authentication are all owned by the
hosting environment; the ledger only talks to these interfaces, allowing
for different implementations (live, simulation, tests).

*/

package vault

import (
	"context"

	"github.com/optionsvault/ovm/internal/types"
)

// AssetTransferPort moves fungible balances between holding accounts.
// A transfer is atomic and all-or-nothing; the ledger assumes at-most-once
// semantics per call and never retries internally.
type AssetTransferPort interface {
	Transfer(ctx context.Context, from, to types.AccountRef, authority types.Identity, amount uint64) error
}

// ClockSource supplies the current time as epoch seconds. It is expected to
// be monotonic non-decreasing; a regression is surfaced as an error by the
// operations that compute durations.
type ClockSource interface {
	Now() int64
}

// EventSink receives domain events. Emission is fire-and-forget: a sink
// failure must not roll back the state mutation that produced the event.
type EventSink interface {
	Emit(event types.DomainEvent)
}

// IdentityVerifier confirms that the presented credential controls the
// returned identity. Signature and key management are entirely external.
type IdentityVerifier interface {
	Identify(ctx context.Context, credential string) (types.Identity, error)
}

// Recorder persists committed ledger state. The in-memory ledger is
// authoritative during a call; the recorder writes a snapshot of committed
// state after the mutation and is not transactional with it.
type Recorder interface {
	SaveVault(vault types.Vault) error
	SaveUserPosition(position types.UserPosition) error
}

// NopRecorder discards all writes. Used by tests and simulation mode.
type NopRecorder struct{}

func (NopRecorder) SaveVault(types.Vault) error               { return nil }
func (NopRecorder) SaveUserPosition(types.UserPosition) error { return nil }
